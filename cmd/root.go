package cmd

import (
	"fmt"

	"github.com/danielpatrickdp/srl-toolkit/internal/archive"
	"github.com/danielpatrickdp/srl-toolkit/internal/config"
	"github.com/danielpatrickdp/srl-toolkit/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Execute runs the srl command tree.
func Execute() error {
	return newRootCmd().Execute()
}

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func (a *app) openStore() (*archive.Store, error) {
	store, err := archive.NewStore(a.cfg.DBPath, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", a.cfg.DBPath, err)
	}
	return store, nil
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	a := &app{}
	var (
		configFile string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:          "srl",
		Short:        "Inspect, archive and serve sampled distributions",
		Long:         "srl reads sampled distribution files, keeps them in a local SQLite archive, and serves the archive over gRPC.",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (toml, yaml or json)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.String("db", "", "path to the archive database")
	flags.String("addr", "", "gRPC address to serve on or connect to")
	_ = v.BindPFlag(config.KeyDB, flags.Lookup("db"))
	_ = v.BindPFlag(config.KeyAddr, flags.Lookup("addr"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newInspectCmd(),
		newImportCmd(a),
		newExportCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newServeCmd(a),
		newPushCmd(a),
		newFetchCmd(a),
	)

	return rootCmd
}
