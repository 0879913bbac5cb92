package obs

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process logger; development gets the console encoder.
func NewLogger(appEnv, name string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if appEnv == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Named(name), nil
}
