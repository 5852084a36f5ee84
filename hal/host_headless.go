//go:build !tinygo

package hal

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Stdin forwards bytes typed on standard input as key presses.
	Stdin bool
}

// RunHeadless boots the kernel without opening a window. boot runs on its own
// goroutine, which becomes the kernel's first task; RunHeadless returns when
// boot returns or ctx is done.
func RunHeadless(ctx context.Context, boot func(*Host) error, cfg HeadlessConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := NewHost(ctx, os.Stdout)
	g, gctx := errgroup.WithContext(ctx)

	done := make(chan error, 1)
	go func() { done <- boot(h) }()

	g.Go(func() error {
		select {
		case err := <-done:
			cancel()
			return err
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	if cfg.Stdin {
		g.Go(func() error { return pumpKeys(gctx, h, os.Stdin) })
	}

	return g.Wait()
}

// pumpKeys turns bytes read from r into key presses until ctx is done. The
// blocking read lives on a separate goroutine that is abandoned on shutdown.
func pumpKeys(ctx context.Context, h *Host, r io.Reader) error {
	bytesCh := make(chan byte, 64)
	go func() {
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(bytesCh)
				return
			}
			bytesCh <- b
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-bytesCh:
			if !ok {
				return nil
			}
			ev := KeyEvent{Press: true, Rune: rune(b)}
			if b == '\n' {
				ev.Code = KeyEnter
			}
			h.PressKey(ev)
		}
	}
}
