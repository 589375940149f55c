package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	logger, err := glog.NewConsoleWithName("chat-relay-smoke", glog.LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %+v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid smoke configuration", zap.Error(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, os.Stdout); err != nil {
		logger.Error("smoke run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("all models streamed successfully")
}
