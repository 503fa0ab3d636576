package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	nuclear "github.com/GriffinCanCode/nuclear-add"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/config"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/server"
	"github.com/GriffinCanCode/nuclear-add/internal/logging"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nuclearadd",
		Short: "Numerically robust addition",
		Long: `nuclearadd adds floating point numbers without losing them.

Sums are compensated, intervals are rounded outward and every precision
anomaly (overflow, cancellation, NaN) is recorded with its operands.

Examples:
  nuclearadd add 0.1 0.2
  nuclearadd add 1e308 1e308 --strict
  nuclearadd sum -- 1 1e16 1 -1e16
  nuclearadd serve --config nuclear.yaml`,
		SilenceUsage: true,
		Version:      server.Version,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file (env vars override it)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newSumCmd(opts),
		newBackendsCmd(opts),
	)
	return cmd
}

// loadConfig reads --config when given, otherwise the environment
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

// newEngine builds an engine from the loaded config. Anomalies are
// logged at warn and above so they reach stderr.
func (o *rootOptions) newEngine(cfg *config.Config, extra ...nuclear.Option) (*nuclear.Engine, error) {
	engCfg, err := cfg.Engine.Build()
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		if engCfg, err = engCfg.With(extra...); err != nil {
			return nil, err
		}
	}

	logCfg := cfg.LoggerConfig()
	if logCfg.Level == "" || logCfg.Level == "info" || logCfg.Level == "debug" {
		logCfg.Level = "warn"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	return nuclear.NewEngine(engCfg, nuclear.WithLogger(logger.Named("engine")))
}

// printJSON writes v as one JSON document
func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LoggerConfig())
}
