package cli

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"hidecan/internal/app"
	"hidecan/internal/config"
	"hidecan/internal/logger"

	"github.com/spf13/cobra"
)

func newServeCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(*cfgFlag))
			if err != nil {
				return err
			}
			logFile, err := setupLogOutput(cfg.App.LogPath)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}
			reportFile, err := setupReportOutput(cfg.App.ReportPath)
			if err != nil {
				return err
			}
			if reportFile != nil {
				defer reportFile.Close()
			}
			logger.Infof("config loaded env=%s profiles=%s", cfg.App.Env, cfg.Aes.ProfilesPath)

			a, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

func setupReportOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		logger.SetReportWriter(nil)
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetReportWriter(f)
	return f, nil
}
