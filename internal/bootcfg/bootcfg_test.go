package bootcfg

import (
	"os"
	"path/filepath"
	"testing"

	"tock/internal/klog"
	"tock/kernel"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	if cfg.Timer.Hz != 100 || cfg.Timer.PreemptTicks != 2 || cfg.Timer.CalibrationMillis != 100 {
		t.Fatalf("Timer = %+v, want {100 2 100}", cfg.Timer)
	}
	if cfg.Sched.MaxLevel != 3 || cfg.Sched.DefaultLevel != 1 {
		t.Fatalf("Sched = %+v, want levels 3 and 1", cfg.Sched)
	}
	if cfg.Routing != "task" || cfg.LogLevel() != klog.LevelInfo || cfg.Host.Headless {
		t.Fatalf("Config = %+v, want task routing, info, windowed", cfg)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("TOCK_TIMER_HZ", "250")
	t.Setenv("TOCK_SCHED_MAILBOX_CAPACITY", "16")
	t.Setenv("TOCK_ROUTING", "queue")

	cfg, err := Load([]string{"--headless", "--ticks=40", "--routing=task"})
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	if cfg.Timer.Hz != 250 {
		t.Fatalf("Timer.Hz = %d, want 250 from environment", cfg.Timer.Hz)
	}
	if cfg.Sched.MailboxCapacity != 16 {
		t.Fatalf("Sched.MailboxCapacity = %d, want 16", cfg.Sched.MailboxCapacity)
	}
	if cfg.Routing != "task" {
		t.Fatalf("Routing = %q, want flag to win over environment", cfg.Routing)
	}
	if !cfg.Host.Headless || cfg.Host.Ticks != 40 {
		t.Fatalf("Host = %+v, want headless for 40 ticks", cfg.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tock.yaml")
	data := []byte("timer:\n  preempt_ticks: 5\nsched:\n  default_level: 2\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() err = %v", err)
	}

	cfg, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	k := cfg.Kernel()
	if k.PreemptTicks != 5 || k.Scheduler.DefaultLevel != 2 {
		t.Fatalf("Kernel() = %+v, want preempt 5, default level 2", k)
	}
	if cfg.LogLevel() != klog.LevelDebug {
		t.Fatalf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	if _, err := Load([]string{"--routing=broadcast"}); err == nil {
		t.Fatalf("Load(--routing=broadcast) err = nil, want error")
	}

	t.Setenv("TOCK_SCHED_DEFAULT_LEVEL", "7")
	if _, err := Load(nil); err == nil {
		t.Fatalf("Load() with default level above max err = nil, want error")
	}
}

func TestKernelRouting(t *testing.T) {
	cfg := Config{Routing: "queue"}
	if got := cfg.Kernel().Routing; got != kernel.RouteQueue {
		t.Fatalf("Kernel().Routing = %v, want queue", got)
	}
}
