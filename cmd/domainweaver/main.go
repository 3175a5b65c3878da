package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvmarrod/domain-weaver/internal/config"
	"github.com/alvmarrod/domain-weaver/internal/storage"
	"github.com/alvmarrod/domain-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	// Cancel in-flight runs on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		logrus.Fatalf("domainweaver: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "domainweaver",
		Short:         "Contract page-level link graphs into domain graphs",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Configure logging
			logrus.SetFormatter(&logrus.TextFormatter{
				FullTimestamp: true,
			})

			loaded, err := config.LoadConfig(configPath)
			switch {
			case err == nil:
				cfg = loaded
			case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
				cfg = config.Default()
			default:
				return err
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON config file")

	root.AddCommand(newAggregateCommand())
	root.AddCommand(newShowRunCommand())
	root.AddCommand(newInitDBCommand())

	return root
}

func newInitDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStorage(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			logrus.Infof("Database initialized: %s", cfg.DBPath)
			return nil
		},
	}
}

func newShowRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-run <run-id>",
		Short: "Print a stored domain graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStorage(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			return showRun(cmd.Context(), store, args[0], os.Stdout)
		},
	}
}
