package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Birgenshire/homink"
)

func main() {
	display, redraws, closeRedraws := homink.NewChannelRenderer("epaper", 4)
	defer closeRedraws()

	go displayWorker(redraws)

	rt, err := homink.Conf("../../data/config.yaml", homink.WithRenderer(display))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func displayWorker(redraws <-chan []homink.SensorView) {
	for views := range redraws {
		fmt.Printf("[%s] redrawing %d sensors\n", time.Now().Format(time.RFC3339), len(views))
		// TODO: drive the e-paper SPI driver here.
	}
}
