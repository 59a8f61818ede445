// Package cli implements the wirehttp command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"wirehttp/application/util/domain"
	"wirehttp/transport"
	"wirehttp/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitStatus  = 1 // response status >= 400
	ExitParse   = 2
	ExitConfig  = 3
	ExitNetwork = 4 // synthesized timeout or unresolved host
	ExitUsage   = 64
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion is called from main with values set at link time.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func exitError(code int, err error) *ExitError { return &ExitError{Code: code, Err: err} }

// App holds what commands need from the outside world.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	Dialer   transport.ConnDialer
	Lookuper domain.Lookuper
	Clock    clock.Clock
}

func DefaultApp() *App {
	return &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Dialer:   tcp.NewDialer(),
		Lookuper: domain.NewResolverLookuper(net.DefaultResolver),
		Clock:    clock.New(),
	}
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "wirehttp",
		Short: "Send one HTTP/1.1 request over a fresh TCP connection.",
		Long: `wirehttp writes a request byte for byte, reads until the server closes
the connection and prints the parsed response. Any connect, send or
receive failure is reported as a 408 Request Timeout response.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.AddCommand(newDoCommand(app))
	root.AddCommand(newVersionCommand())

	return root
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Everything cobra rejects before running a command.
		exitErr = exitError(ExitUsage, err)
	}
	if exitErr.Err != nil {
		fmt.Fprintln(app.Stderr, "wirehttp:", exitErr.Err)
	}
	return exitErr.Code
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
