package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spec-kit/ticketflex/internal/app"
	"github.com/spec-kit/ticketflex/internal/config"
	"github.com/spec-kit/ticketflex/internal/observability"
)

func main() {
	build := func(ctx context.Context) (*app.Container, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger, err := observability.NewLogger(config.LoggerConfig{Level: "warn"}, cfg.App.Name)
		if err != nil {
			return nil, err
		}
		return app.Build(ctx, cfg, app.Options{Logger: logger})
	}

	if err := newRootCmd(os.Stdout, build).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
