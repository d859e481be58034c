package app

import (
	"os"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/logx"
)

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)
}
