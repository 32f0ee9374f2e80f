// podbean-proxy serves the Podbean API proxy over plain HTTP. It answers
// every path, so it can sit behind a rewrite rule or run locally in place of
// the serverless function.
//
// Credentials are read from PODBEAN_CLIENT_ID and PODBEAN_CLIENT_SECRET.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	podbeanproxy "github.com/goliatone/go-podbean-proxy"
	"github.com/goliatone/go-podbean-proxy/adapters/gologger"
)

const (
	defaultAddr     = ":8888"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	addr          string
	allowedOrigin string
	logLevel      string
	logFormat     string
}

func run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("podbean-proxy", pflag.ContinueOnError)
	flagSet.StringVar(&opts.addr, "addr", "", "listen address (default $PORT or "+defaultAddr+")")
	flagSet.StringVar(&opts.allowedOrigin, "allowed-origin", "", "Access-Control-Allow-Origin value (default *)")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	flagSet.StringVar(&opts.logFormat, "log-format", string(gologger.FormatText), "log format: text or json")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: podbean-proxy [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logger := gologger.NewSlogLogger(gologger.SlogOptions{
		Output: os.Stderr,
		Level:  opts.logLevel,
		Format: gologger.Format(opts.logFormat),
	})

	runtime := podbeanproxy.Config{}
	runtime.CORS.AllowedOrigin = opts.allowedOrigin
	svc, err := podbeanproxy.Setup(runtime, podbeanproxy.WithLoggerProvider(gologger.NewProvider(logger)))
	if err != nil {
		return fmt.Errorf("setup proxy: %w", err)
	}
	facade, err := podbeanproxy.NewFacade(svc)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              listenAddr(opts.addr, os.Getenv("PORT")),
		Handler:           facade.Handlers().HTTP,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("podbean proxy listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// listenAddr prefers the flag, then $PORT, then the default.
func listenAddr(flagValue string, port string) string {
	if addr := strings.TrimSpace(flagValue); addr != "" {
		return addr
	}
	if port = strings.TrimSpace(port); port != "" {
		if strings.Contains(port, ":") {
			return port
		}
		return ":" + port
	}
	return defaultAddr
}
