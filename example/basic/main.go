package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Birgenshire/homink"
)

func main() {
	rt, err := homink.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("dashboard runtime exited: %v", err)
	}
}
