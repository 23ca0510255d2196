// Package root contains the root command for the application
package root

import (
	"context"
	"errors"

	"fjacquet/pgn-ratings/internal/config"
	"fjacquet/pgn-ratings/internal/container"
	"fjacquet/pgn-ratings/internal/logging"

	"github.com/spf13/cobra"
)

// Options holds the persistent flags shared by every command. Flags that are
// set override the configuration file and environment.
type Options struct {
	ConfigFile    string
	LogLevel      string
	LogFormat     string
	OutputDir     string
	Extension     string
	Delimiter     string
	SummaryFile   string
	SummaryFormat string
	SQLitePath    string
	Strategies    []string
}

type containerKey struct{}

// Cmd is the root command
var Cmd = NewCommand()

// NewCommand builds a root command with its own flag set.
func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "pgn-ratings",
		Short: "A CLI tool to build rating histograms per time-control category from PGN files.",
		Long: `pgn-ratings reads chess games in PGN format, classifies each game into a
speed category from its time control and writes one rating histogram per
category, together with mean and standard deviation.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(WithContainer(cmd.Context(), c))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.pgn-ratings, .pgn-ratings or .)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format (text or json)")
	flags.StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory receiving the category files")
	flags.StringVar(&opts.Extension, "extension", "", "Extension of the category files")
	flags.StringVar(&opts.Delimiter, "delimiter", "", "Single-character field delimiter of the category files")
	flags.StringVar(&opts.SummaryFile, "summary-file", "", "Write a summary document to this path")
	flags.StringVar(&opts.SummaryFormat, "summary-format", "", "Summary document format (yaml or json)")
	flags.StringVar(&opts.SQLitePath, "sqlite", "", "Record the run in this SQLite database")
	flags.StringSliceVar(&opts.Strategies, "strategy", nil, "Ordered category resolution strategies (time_control, event_name)")

	return cmd
}

func (o *Options) build(cmd *cobra.Command) (*container.Container, error) {
	// Values already in the environment win over .env
	if _, err := config.LoadEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.InitializeConfigWithFile(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cmd, cfg); err != nil {
		return nil, err
	}

	logrusLogger := config.ConfigureLoggingFromConfig(cfg)
	logrusLogger.SetOutput(cmd.ErrOrStderr())
	logger := logging.NewLogrusAdapterFromLogger(logrusLogger)
	logging.SetDefaultLogger(logger)

	return container.NewContainerWithLogger(cfg, logger)
}

// apply copies the flags the user set onto cfg and re-validates it.
func (o *Options) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	overrides := []struct {
		name  string
		value string
		dest  *string
	}{
		{"log-level", o.LogLevel, &cfg.Log.Level},
		{"log-format", o.LogFormat, &cfg.Log.Format},
		{"output-dir", o.OutputDir, &cfg.Output.Directory},
		{"extension", o.Extension, &cfg.Output.Extension},
		{"delimiter", o.Delimiter, &cfg.Output.Delimiter},
		{"summary-file", o.SummaryFile, &cfg.Summary.File},
		{"summary-format", o.SummaryFormat, &cfg.Summary.Format},
		{"sqlite", o.SQLitePath, &cfg.Store.SQLitePath},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dest = ov.value
		}
	}
	if flags.Changed("strategy") {
		cfg.Classification.Strategies = o.Strategies
	}
	return cfg.Validate()
}

// WithContainer returns a copy of ctx carrying c.
func WithContainer(ctx context.Context, c *container.Container) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, containerKey{}, c)
}

// ContainerFrom returns the container stored by the root command.
func ContainerFrom(ctx context.Context) (*container.Container, error) {
	if ctx != nil {
		if c, ok := ctx.Value(containerKey{}).(*container.Container); ok && c != nil {
			return c, nil
		}
	}
	return nil, errors.New("application container not initialized")
}
