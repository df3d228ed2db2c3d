package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/launchdash/dashboard/internal/logging"
	intOtel "github.com/launchdash/dashboard/internal/otel"
)

const AppName = "launch_dashboard"

var (
	// SessionStartTime names the log file of this run
	SessionStartTime = time.Now()

	configDir   string
	LogFilePath string
	LogFile     *os.File

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	ZLogger      zerolog.Logger
	OTelProvider *intOtel.Provider
	gelfWriter   io.WriteCloser

	// set once a dataset is loaded, read by the log context provider
	storageType string
	datasetRows int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           AppName,
		Short:         "SpaceX launch records dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		RunE: runServe,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configDir, "config", ".", "directory holding "+AppName+".cfg.json")
	flags.String("csv", "", "launch records CSV path")
	flags.String("host", "", "listen host")
	flags.Int("port", 0, "listen port")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	bindFlag(root, "data.csvPath", "csv")
	bindFlag(root, "server.host", "host")
	bindFlag(root, "server.port", "port")
	bindFlag(root, "logLevel", "log-level")

	root.AddCommand(
		newServeCmd(),
		newImportCmd(),
		newExportCmd(),
		newSnapshotCmd(),
	)
	return root
}

// bindFlag binds a persistent flag to a viper key. Unset flags leave the
// config file and default values in effect.
func bindFlag(cmd *cobra.Command, key, name string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func main() {
	err := newRootCmd().Execute()
	if SlogManager != nil {
		if err != nil {
			Logger.Error("Command failed", "error", err)
		}
		shutdownLogging()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
