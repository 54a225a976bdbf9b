package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Birgenshire/homink"
)

func main() {
	display := homink.NewCallbackRenderer("stdout", func(views []homink.SensorView) error {
		fmt.Println("--- redraw ---")
		for _, v := range views {
			state := v.State
			if !v.Available {
				state = "unavailable"
			}
			fmt.Printf("%-24s %s\n", v.Name, state)
		}
		return nil
	})

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
