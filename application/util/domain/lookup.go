package domain

import (
	"context"
	"maps"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

var (
	ErrDomainNotFound = errors.New("domain not found")
	ErrNoIPv4         = errors.New("domain has no ipv4 address")
)

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

type mapLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*mapLookuper)(nil)

func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	if set == nil {
		set = make(map[string][]netip.Addr)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, ok := m.set[domain]
	if !ok {
		return nil, ErrDomainNotFound
	}
	return addrs, nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[domain] = addrs
}

func (m *mapLookuper) Del(domain string) { delete(m.set, domain) }

// resolverLookuper asks the system resolver for ipv4 addresses.
type resolverLookuper struct {
	resolver *net.Resolver
}

var _ Lookuper = (*resolverLookuper)(nil)

// NewResolverLookuper uses [net.DefaultResolver] when r is nil.
func NewResolverLookuper(r *net.Resolver) *resolverLookuper {
	if r == nil {
		r = net.DefaultResolver
	}
	return &resolverLookuper{resolver: r}
}

func (l *resolverLookuper) LookupIP(ctx context.Context, domain string) ([]netip.Addr, error) {
	addrs, err := l.resolver.LookupNetIP(ctx, "ip4", domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errors.Wrap(ErrDomainNotFound, err.Error())
		}
		return nil, errors.Wrapf(err, "looking up %s", domain)
	}
	return addrs, nil
}

// LookupIPv4 resolves host to its first ipv4 address.
// A literal ipv4 address is returned as is without asking l.
func LookupIPv4(ctx context.Context, l Lookuper, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, errors.Wrapf(ErrNoIPv4, "literal %s", host)
		}
		return addr, nil
	}

	addrs, err := l.LookupIP(ctx, host)
	if err != nil {
		return netip.Addr{}, err
	}

	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			return addr, nil
		}
	}

	return netip.Addr{}, ErrNoIPv4
}
