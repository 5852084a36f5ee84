package app

import (
	"fmt"
	"image"
	"strings"

	"tock/console"
	"tock/hal"
	"tock/internal/klog"
	"tock/kernel"
)

// installPanicHandler reports the first task panic on the log and replaces
// the screen with a panic report. The kernel parks the task afterwards; the
// rest of the system keeps running but stops drawing.
func installPanicHandler(k *kernel.Kernel, h hal.HAL, log *klog.Logger) {
	k.Tasks.SetPanicHandler(func(info kernel.PanicInfo) {
		log.AttachConsole(nil)
		log.Errorf("tock panic: task=%d panic=%v", info.TaskID, info.Value)
		lines := stackLines(info.Stack)
		for _, line := range lines {
			log.Errorf("%s", line)
		}

		disp := h.Display()
		if disp == nil || disp.Framebuffer() == nil {
			return
		}
		fb := disp.Framebuffer()
		c := console.New(fb, image.Rect(0, 0, fb.Width(), fb.Height()))
		fmt.Fprintf(c, "\x1b[31mtock panic\x1b[0m\ntask: %d\npanic: %v\n", info.TaskID, info.Value)
		if len(lines) == 0 {
			fmt.Fprintln(c, "stack: unavailable")
		} else {
			fmt.Fprintln(c, "stack:")
			for _, line := range lines {
				fmt.Fprintln(c, line)
			}
		}
		_ = c.Flush()
	})
}

func stackLines(stack []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(stack), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
