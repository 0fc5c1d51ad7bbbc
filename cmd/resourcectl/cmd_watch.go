package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog directory and reload in place on change, until interrupted",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s for changes, press ctrl-c to stop\n", catalogDir)
	err = eng.Watch(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
