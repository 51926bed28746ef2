package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/samvad-request-kit/internal/app"
	"github.com/samvad-hq/samvad-request-kit/internal/config"
	"github.com/samvad-hq/samvad-request-kit/internal/logger"
	"github.com/samvad-hq/samvad-request-kit/pkg/requesthandler"
)

type cliOptions struct {
	operation string
	endpoint  string
	query     map[string]string
	data      string
	dataFile  string
	fields    map[string]string
	files     []string
	single    bool
	baseURL   string
	out       string
	history   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run writes results to stdout and log entries to stderr.
func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("requestctl", pflag.ContinueOnError)
	opts := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg, stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.history > 0 {
		exchanges, err := rt.History(opts.history)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		return writeJSON(stdout, exchanges)
	}

	inv, err := opts.invocation()
	if err != nil {
		return err
	}
	res, err := rt.Do(ctx, inv)
	if err != nil {
		return err
	}

	if strings.EqualFold(inv.Operation, app.OpDownload) {
		return writeDownload(stdout, opts.out, res.Raw)
	}
	return writeJSON(stdout, res.Payload)
}

func registerFlags(fs *pflag.FlagSet) *cliOptions {
	opts := &cliOptions{}

	// Bound into config.
	fs.String("base-url", "", "API base URL (env BASE_URL)")
	fs.String("token", "", "bearer token (env AUTH_TOKEN)")
	fs.Bool("log-enabled", true, "log requests and responses")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Int64("timeout", 0, "request timeout in seconds, 0 disables it")
	fs.String("headers-file", "", "YAML/JSON file with additional headers")

	fs.StringVarP(&opts.operation, "method", "X", app.OpGet, "GET, POST, PUT, DELETE, DOWNLOAD or UPLOAD")
	fs.StringVarP(&opts.endpoint, "endpoint", "e", "", "endpoint appended to the base URL")
	fs.StringToStringVarP(&opts.query, "query", "q", nil, "query parameters (GET only)")
	fs.StringVarP(&opts.data, "data", "d", "", "JSON request body")
	fs.StringVar(&opts.dataFile, "data-file", "", "file holding the JSON request body")
	fs.StringToStringVarP(&opts.fields, "field", "F", nil, "multipart form fields (UPLOAD only)")
	fs.StringArrayVarP(&opts.files, "file", "f", nil, "file to upload, repeatable (UPLOAD only)")
	fs.BoolVar(&opts.single, "single", false, `upload only the first file, under "file"`)
	fs.StringVar(&opts.baseURL, "custom-base-url", "", "override the base URL for this call (POST and DOWNLOAD)")
	fs.StringVarP(&opts.out, "out", "o", "", "write downloaded bytes to this path instead of stdout")
	fs.IntVar(&opts.history, "history", 0, "print the N most recent exchanges and exit")

	return opts
}

func (o *cliOptions) invocation() (app.Invocation, error) {
	inv := app.Invocation{
		Operation:  o.operation,
		Endpoint:   o.endpoint,
		Query:      o.query,
		BaseURL:    o.baseURL,
		Fields:     o.fields,
		SingleFile: o.single,
	}

	body, err := o.body()
	if err != nil {
		return app.Invocation{}, err
	}
	inv.Body = body

	for _, path := range o.files {
		content, err := os.ReadFile(path)
		if err != nil {
			return app.Invocation{}, fmt.Errorf("read upload file: %w", err)
		}
		inv.Files = append(inv.Files, requesthandler.File{Name: filepath.Base(path), Content: content})
	}
	return inv, nil
}

// body decodes --data or --data-file into a JSON value; nil when neither is set.
func (o *cliOptions) body() (any, error) {
	raw := []byte(o.data)
	if o.dataFile != "" {
		if o.data != "" {
			return nil, fmt.Errorf("--data and --data-file are mutually exclusive")
		}
		b, err := os.ReadFile(o.dataFile)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		raw = b
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	return v, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDownload(stdout io.Writer, path string, raw []byte) error {
	if path == "" {
		_, err := stdout.Write(raw)
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}
