package cmd

import (
	"Netsim/api"
	"Netsim/pkg"
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg     = api.DefaultConfig()
	Logger  = logrus.New()
	Manager *pkg.Manager
)

var rootCmd = &cobra.Command{
	Use:           "netsim",
	Short:         "Network namespace simulation CLI",
	Long:          "A command-line tool for wiring network namespaces with veth pairs and impairing their links.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configureLogger(Logger, cfg); err != nil {
			return err
		}
		m, err := pkg.NewManager(cfg, Logger)
		if err != nil {
			return err
		}
		Manager = m
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Manager != nil {
			Manager.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		Logger.WithError(err).Error("command failed")
	}
	return err
}

func configureLogger(log *logrus.Logger, cfg api.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, api.ErrInvalidArgument)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch cfg.LogFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q: %w", cfg.LogFormat, api.ErrInvalidArgument)
	}
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	flags.StringVar(&cfg.Shaper, "shaper", cfg.Shaper, "Traffic shaper backend (netlink or tc)")
	flags.StringVar(&cfg.TCBinary, "tc-binary", cfg.TCBinary, "tc binary used by the tc shaper")
	flags.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "Links provisioned concurrently by apply")
}
