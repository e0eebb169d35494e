package main

import (
	"log/slog"

	"httpkit/application/http/client"
	"httpkit/internal/config"
	"httpkit/transport"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

type app struct {
	dialer transport.Dialer
	clock  clock.Clock

	flags rootFlags
}

func newRootCmd(d transport.Dialer, clk clock.Clock) *cobra.Command {
	a := &app{dialer: d, clock: clk}

	root := &cobra.Command{
		Use:   "httpkit",
		Short: "Send a single HTTP/1.1 request and print the response",
		Long: `httpkit sends one request over a fresh connection and prints the
status line, the response headers and the body.

Examples:
  httpkit get http://example.com/
  httpkit head -H "Accept: text/html" http://example.com/
  httpkit post -d '{"a":1}' -H "Content-Type: application/json" http://example.com/items`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&a.flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log request details to stderr")
	root.PersistentFlags().BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.newRequestCmd("get", false),
		a.newRequestCmd("head", false),
		a.newRequestCmd("delete", false),
		a.newRequestCmd("post", true),
		a.newRequestCmd("put", true),
	)

	return root
}

func (a *app) newClient(cmd *cobra.Command) (*client.Client, error) {
	if a.flags.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	wire := client.NewWireTransport(a.dialer, logger, a.clock, cfg.WireOptions())

	return client.New(wire, logger, a.clock, opts), nil
}
