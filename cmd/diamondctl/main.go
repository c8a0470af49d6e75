package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/diamond_shop/internal/config"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
)

func main() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.NewWithWriter(os.Stderr, config.EnvDefault("LOG_LEVEL", "warn"))
	ctx = logging.IntoContext(ctx, logger)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
