package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wifihal/docs"
	"wifihal/internal/config"
)

// options are the effective daemon settings after flags and the config file
// have been merged.
type options struct {
	addr            string
	configPath      string
	profilesDir     string
	device          string
	serviceName     string
	logLevel        string
	logFormat       string
	eventDB         string
	autoStart       bool
	startRetries    int
	corsOrigins     string
	maxBodyBytes    int64
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&options{}) }

// newRootCmdWith binds the command flags to opts.
func newRootCmdWith(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "wifihald",
		Short:         "Wi-Fi HAL device manager daemon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				fc, err := config.Load(opts.configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				mergeConfig(cmd, opts, fc)
			}
			logger, err := newLogger(opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			docs.SwaggerInfo.Version = version
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, logger)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.addr, "addr", envStr("WIFIHALD_ADDR", ":8080"), "HTTP listen address, e.g. :8080 (defaults WIFIHALD_ADDR)")
	f.StringVar(&opts.configPath, "config", "", "Path to a yaml, json or toml config file")
	f.StringVar(&opts.profilesDir, "profiles-dir", "", "Directory of chip capability profiles")
	f.StringVar(&opts.device, "device", "", "Device profile to simulate (empty selects the baseline chip)")
	f.StringVar(&opts.serviceName, "service-name", "", "Wi-Fi service instance name to wait for")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	f.StringVar(&opts.logFormat, "log-format", "console", "Log format: console|json")
	f.StringVar(&opts.eventDB, "event-db", "", "sqlite file for the event journal (empty disables /events)")
	f.BoolVar(&opts.autoStart, "auto-start", true, "Start the Wi-Fi service once it is bound")
	f.IntVar(&opts.startRetries, "start-retries", 0, "Extra start attempts while the service is not available (negative disables)")
	f.StringVar(&opts.corsOrigins, "cors-origins", "", "Comma separated CORS origins (empty disables CORS)")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 0, "Maximum JSON request body size")
	f.DurationVar(&opts.requestTimeout, "request-timeout", 0, "Timeout for interface requests made over HTTP (0 disables)")
	f.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	root.AddCommand(completionCmd)
	return root
}

// mergeConfig fills every option whose flag was not set explicitly from the
// config file. Zero values in the file leave the flag default in place.
func mergeConfig(cmd *cobra.Command, o *options, fc config.Config) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if !changed("addr") && fc.Addr != "" {
		o.addr = fc.Addr
	}
	if !changed("profiles-dir") && fc.ProfilesDir != "" {
		o.profilesDir = fc.ProfilesDir
	}
	if !changed("device") && fc.Device != "" {
		o.device = fc.Device
	}
	if !changed("service-name") && fc.ServiceName != "" {
		o.serviceName = fc.ServiceName
	}
	if !changed("log-level") && fc.LogLevel != "" {
		o.logLevel = fc.LogLevel
	}
	if !changed("event-db") && fc.EventDB != "" {
		o.eventDB = fc.EventDB
	}
	if !changed("auto-start") && fc.AutoStart != nil {
		o.autoStart = fc.AutoStartEnabled()
	}
	if !changed("start-retries") && fc.StartRetries != 0 {
		o.startRetries = fc.StartRetries
	}
	if !changed("cors-origins") && len(fc.CORSOrigins) > 0 {
		o.corsOrigins = strings.Join(fc.CORSOrigins, ",")
	}
	if !changed("max-body-bytes") && fc.MaxBodyBytes > 0 {
		o.maxBodyBytes = fc.MaxBodyBytes
	}
}

func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var l zerolog.Logger
	switch format {
	case "json":
		l = zerolog.New(os.Stderr)
	case "console", "":
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q", format)
	}
	return l.Level(lvl).With().Timestamp().Logger(), nil
}

// splitCSV splits a comma separated list, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// run blocks until ctx is canceled or the HTTP server fails.
func run(ctx context.Context, o *options, logger zerolog.Logger) error {
	d, err := newDaemon(o, logger)
	if err != nil {
		return err
	}
	defer d.close()
	return d.serve(ctx)
}
