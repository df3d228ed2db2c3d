package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/logging"
	intOtel "github.com/launchdash/dashboard/internal/otel"
)

// setupLogging loads the config and sets up the slog and zerolog loggers.
// Records go to stdout until the log file is open.
func setupLogging() error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	level := viper.GetString("logLevel")

	var logOut io.Writer
	if logsDir := viper.GetString("logsDir"); logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
		} else {
			LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
			if _, err := os.Stat(LogFilePath); err == nil {
				os.Rename(LogFilePath, LogFilePath+".old")
			}
			f, err := os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
			} else {
				LogFile = f
				logOut = f
				Logger.Info("Begin logging in logs directory", "path", LogFilePath)
			}
		}
	}

	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGELFWriter(graylogCfg.Address)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", graylogCfg.Address)
		} else {
			gelfWriter = w
			SlogManager.SetGELF(w)
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		p, err := intOtel.New(intOtel.ConfigFrom(otelCfg, logOut))
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			OTelProvider = p
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	SlogManager.SetContextProvider(func() []slog.Attr {
		if storageType == "" {
			return nil
		}
		return []slog.Attr{
			slog.String("storage", storageType),
			slog.Int("rows", datasetRows),
		}
	})

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(logOut, level, otelLogProvider)
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	// storage and metrics managers log through zerolog into the same sinks
	zout := io.Writer(os.Stderr)
	if logOut != nil {
		zout = logOut
	}
	if gelfWriter != nil {
		zout = zerolog.MultiLevelWriter(zout, gelfWriter)
	}
	ZLogger = logging.NewZerolog(zout, level)
	return nil
}

// shutdownLogging flushes pending records and closes every sink.
func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if gelfWriter != nil {
		gelfWriter.Close()
	}
	if LogFile != nil {
		LogFile.Close()
	}
}
