//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"tock/app"
	"tock/hal"
	"tock/internal/bootcfg"
)

func main() {
	cfg, err := bootcfg.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	boot := func(h *hal.Host) error { return app.Run(h, cfg) }

	if cfg.Host.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, boot, hal.HeadlessConfig{Stdin: cfg.Host.Stdin}); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(boot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
