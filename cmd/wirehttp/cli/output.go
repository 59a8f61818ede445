package cli

import (
	"fmt"
	"io"

	"wirehttp/application/http"
	"wirehttp/application/http/status"

	"github.com/fatih/color"
)

type printer struct {
	w io.Writer

	success  *color.Color
	redirect *color.Color
	client   *color.Color
	server   *color.Color
	header   *color.Color
	faint    *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:        w,
		success:  color.New(color.FgGreen, color.Bold),
		redirect: color.New(color.FgCyan, color.Bold),
		client:   color.New(color.FgYellow, color.Bold),
		server:   color.New(color.FgRed, color.Bold),
		header:   color.New(color.FgCyan),
		faint:    color.New(color.Faint),
	}

	if noColor {
		for _, c := range []*color.Color{p.success, p.redirect, p.client, p.server, p.header, p.faint} {
			c.DisableColor()
		}
	}

	return p
}

func (p *printer) statusColor(code int) *color.Color {
	switch {
	case status.IsSuccess(code):
		return p.success
	case status.IsRedirect(code):
		return p.redirect
	case status.IsClientError(code):
		return p.client
	default:
		return p.server
	}
}

func (p *printer) response(res *http.Response, includeHeaders bool) {
	p.statusColor(res.StatusCode()).Fprintln(p.w, res.StatusLine())

	if includeHeaders {
		for _, line := range res.Headers() {
			p.header.Fprintln(p.w, line)
		}
		fmt.Fprintln(p.w)
	}

	body := res.Body()
	if len(body) == 0 {
		return
	}
	p.w.Write(body)
	if body[len(body)-1] != '\n' {
		fmt.Fprintln(p.w)
	}
}

func (p *printer) summary(s latencySummary) {
	p.faint.Fprintf(p.w, "requests=%d p50=%s p90=%s p99=%s max=%s\n", s.Count, s.P50, s.P90, s.P99, s.Max)
}
