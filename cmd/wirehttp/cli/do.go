package cli

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wirehttp/application/http"
	"wirehttp/application/http/actor/client"
	"wirehttp/application/jsonvalue"
	"wirehttp/application/multipart"
	"wirehttp/internal/config"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

type doOptions struct {
	method  string
	headers []string
	data    string
	json    []string
	form    []string
	timeout time.Duration
	config  string
	noColor bool
	verbose bool
	include bool
	repeat  int
	rate    float64
}

func newDoCommand(app *App) *cobra.Command {
	opts := &doOptions{}

	cmd := &cobra.Command{
		Use:   "do <url>",
		Short: "Perform a request and print the response",
		Long: `Perform one request against an http:// url.

Examples:
  wirehttp do http://example.com/
  wirehttp do http://localhost:8080/users -j name=ada -j admin:=true
  wirehttp do http://localhost:8080/upload -F title=report -F file=@report.pdf
  wirehttp do http://localhost:8080/health --repeat 100 --rate 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDo(cmd, app, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "X", "", "Request method (default GET, or POST with a body)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `Header line "Name: value", repeatable`)
	f.StringVarP(&opts.data, "data", "d", "", "Raw request body, @file reads it from file")
	f.StringArrayVarP(&opts.json, "json", "j", nil, "JSON body member key=string or key:=json, repeatable")
	f.StringArrayVarP(&opts.form, "form", "F", nil, "Multipart field name=value or name=@file, repeatable")
	f.DurationVar(&opts.timeout, "timeout", 0, "Timeout for each of connect, send and receive (env: "+config.EnvTimeout+")")
	f.StringVar(&opts.config, "config", getEnvString(config.EnvConfig, ""), "Path to config file (env: "+config.EnvConfig+")")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log transaction phases to stderr")
	f.BoolVarP(&opts.include, "include", "i", false, "Print response headers")
	f.IntVar(&opts.repeat, "repeat", 1, "Number of times to perform the request")
	f.Float64Var(&opts.rate, "rate", 0, "Requests per second when repeating, 0 for no limit")

	return cmd
}

func runDo(cmd *cobra.Command, app *App, opts *doOptions, rawURL string) error {
	if opts.repeat < 1 {
		return exitError(ExitUsage, errors.Errorf("--repeat must be at least 1, got %d", opts.repeat))
	}
	if opts.rate < 0 {
		return exitError(ExitUsage, errors.Errorf("--rate must not be negative, got %g", opts.rate))
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return exitError(ExitConfig, err)
	}
	if cmd.Flags().Changed("timeout") {
		if opts.timeout <= 0 {
			return exitError(ExitUsage, errors.Errorf("--timeout must be positive, got %s", opts.timeout))
		}
		cfg.Timeout = opts.timeout
	}

	level, err := cfg.Level()
	if err != nil {
		return exitError(ExitConfig, err)
	}
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(app.Stderr, &slog.HandlerOptions{Level: level}))

	req, err := buildRequest(app.Clock, cfg, opts, rawURL)
	if err != nil {
		return exitError(ExitUsage, err)
	}

	c := client.New(app.Dialer, app.Lookuper, logger, app.Clock, client.Options{Timeout: cfg.Timeout})
	p := newPrinter(app.Stdout, opts.noColor || cfg.NoColor)

	return perform(cmd.Context(), app.Clock, c, req, p, opts)
}

func perform(
	ctx context.Context,
	clk clock.Clock,
	c *client.Client,
	req *client.Request,
	p *printer,
	opts *doOptions,
) error {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}

	lat := newLatencies()
	code := ExitOK

	for i := 0; i < opts.repeat; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return exitError(ExitNetwork, errors.Wrap(err, "waiting for rate limiter"))
		}

		start := clk.Now()
		res, err := c.Perform(ctx, req)
		lat.record(clk.Since(start))
		if err != nil {
			return exitError(performExitCode(err), err)
		}

		p.response(res, opts.include)
		code = max(code, responseExitCode(res))
	}

	if opts.repeat > 1 {
		p.summary(lat.summary())
	}

	if code != ExitOK {
		return exitError(code, nil)
	}
	return nil
}

func performExitCode(err error) int {
	var unresolved *client.HostUnresolvedError
	if errors.As(err, &unresolved) {
		return ExitNetwork
	}
	return ExitParse
}

func responseExitCode(res *http.Response) int {
	switch {
	case isSynthesized(res):
		return ExitNetwork
	case res.StatusCode() >= 400:
		return ExitStatus
	default:
		return ExitOK
	}
}

// isSynthesized reports whether res stands in for a failed exchange.
// A received response always has a version.
func isSynthesized(res *http.Response) bool {
	return res.Version() == "" && res.StatusCode() == http.TimeoutResponse().StatusCode()
}

func buildRequest(clk clock.Clock, cfg *config.Config, opts *doOptions, rawURL string) (*client.Request, error) {
	bodies := 0
	for _, given := range []bool{opts.data != "", len(opts.json) > 0, len(opts.form) > 0} {
		if given {
			bodies++
		}
	}
	if bodies > 1 {
		return nil, errors.New("only one of --data, --json and --form may be given")
	}

	method := strings.ToUpper(opts.method)
	if method == "" {
		method = client.DefaultMethod
		if bodies > 0 {
			method = "POST"
		}
	}

	req := client.NewRequest().URL(rawURL).Method(method).Timeout(cfg.Timeout)

	given := make([]http.Field, 0, len(opts.headers))
	for _, line := range opts.headers {
		field, err := http.ParseField(line)
		if err != nil {
			return nil, errors.Wrapf(err, "header %q", line)
		}
		given = append(given, field)
	}

	// Headers from the command line replace configured ones of the same name.
	for _, line := range cfg.HeaderLines() {
		field, err := http.ParseField(line)
		if err != nil {
			return nil, errors.Wrapf(err, "configured header %q", line)
		}
		if !hasField(given, field.Name) {
			req.AddHeader(line)
		}
	}
	for _, line := range opts.headers {
		req.AddHeader(line)
	}

	switch {
	case opts.data != "":
		body, err := readData(opts.data)
		if err != nil {
			return nil, err
		}
		req.Body(body)
	case len(opts.json) > 0:
		obj, err := jsonObject(opts.json)
		if err != nil {
			return nil, err
		}
		req.BodyJSON(obj)
	case len(opts.form) > 0:
		b, err := formBuilder(clk, opts.form)
		if err != nil {
			return nil, err
		}
		req.BodyMultipart(b)
	}

	if err := req.Err(); err != nil {
		return nil, err
	}
	return req, nil
}

func hasField(fields []http.Field, name string) bool {
	for _, f := range fields {
		if f.Is(name) {
			return true
		}
	}
	return false
}

func readData(data string) ([]byte, error) {
	path, ok := strings.CutPrefix(data, "@")
	if !ok {
		return []byte(data), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading --data file")
	}
	return body, nil
}

// jsonObject builds an object from key=string and key:=json pairs,
// keeping their order.
func jsonObject(pairs []string) (jsonvalue.Object, error) {
	obj := jsonvalue.Object{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || key == ":" {
			return nil, errors.Errorf("json member %q is not key=value", pair)
		}

		if raw, isRaw := strings.CutSuffix(key, ":"); isRaw {
			v, err := jsonvalue.Parse(value)
			if err != nil {
				return nil, errors.Wrapf(err, "json member %q", raw)
			}
			obj = obj.Set(raw, v)
			continue
		}

		obj = obj.Set(key, jsonvalue.String(value))
	}
	return obj, nil
}

func formBuilder(clk clock.Clock, fields []string) (*multipart.Builder, error) {
	b := multipart.New(clk)
	for _, field := range fields {
		name, value, ok := strings.Cut(field, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("form field %q is not name=value", field)
		}

		if path, isFile := strings.CutPrefix(value, "@"); isFile {
			b.AddFilePart(name, path, filepath.Base(path), mimeType(path))
			continue
		}
		b.AddFormField(name, value)
	}
	return b, nil
}

func mimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
