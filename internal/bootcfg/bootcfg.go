// Package bootcfg loads the kernel's boot configuration from defaults, an
// optional config file, TOCK_* environment variables and command-line flags,
// in increasing order of precedence.
package bootcfg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tock/internal/klog"
	"tock/kernel"
)

const envPrefix = "TOCK"

// Config is the full boot configuration.
type Config struct {
	Timer   TimerConfig `mapstructure:"timer"`
	Sched   SchedConfig `mapstructure:"sched"`
	Routing string      `mapstructure:"routing" validate:"oneof=task queue"`
	Log     LogConfig   `mapstructure:"log"`
	Host    HostConfig  `mapstructure:"host"`
}

// TimerConfig sizes the LAPIC tick and the preemption period.
type TimerConfig struct {
	Hz                int    `mapstructure:"hz" validate:"gte=1,lte=10000"`
	PreemptTicks      uint64 `mapstructure:"preempt_ticks" validate:"gte=1"`
	CalibrationMillis int    `mapstructure:"calibration_ms" validate:"gte=1,lte=1000"`
}

// SchedConfig sizes the task manager.
type SchedConfig struct {
	MaxLevel        int `mapstructure:"max_level" validate:"gte=1,lte=15"`
	DefaultLevel    int `mapstructure:"default_level" validate:"gte=1,ltefield=MaxLevel"`
	StackBytes      int `mapstructure:"stack_bytes" validate:"gte=4096"`
	MailboxCapacity int `mapstructure:"mailbox_capacity" validate:"gte=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// HostConfig controls the hosted machine.
type HostConfig struct {
	Headless bool   `mapstructure:"headless"`
	Ticks    uint64 `mapstructure:"ticks"`
	Stdin    bool   `mapstructure:"stdin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timer.hz", kernel.DefaultTimerHz)
	v.SetDefault("timer.preempt_ticks", kernel.DefaultPreemptTicks)
	v.SetDefault("timer.calibration_ms", kernel.DefaultCalibrationMillis)
	v.SetDefault("sched.max_level", kernel.MaxLevel)
	v.SetDefault("sched.default_level", kernel.DefaultLevel)
	v.SetDefault("sched.stack_bytes", kernel.DefaultStackBytes)
	v.SetDefault("sched.mailbox_capacity", 0)
	v.SetDefault("routing", "task")
	v.SetDefault("log.level", "info")
	v.SetDefault("host.headless", false)
	v.SetDefault("host.ticks", 0)
	v.SetDefault("host.stdin", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tock", pflag.ContinueOnError)
	fs.String("config", "", "Config file (yaml, toml or json).")
	fs.Bool("headless", false, "Run without a window.")
	fs.Uint64("ticks", 0, "Shut down after N timer ticks (0 = run forever).")
	fs.Bool("stdin", false, "Feed stdin to the keyboard in headless mode.")
	fs.Int("hz", kernel.DefaultTimerHz, "Timer interrupts per second.")
	fs.String("routing", "task", "Interrupt message routing: task or queue.")
	fs.String("log-level", "info", "Log level: debug, info, warn or error.")
	return fs
}

var flagKeys = map[string]string{
	"headless":  "host.headless",
	"ticks":     "host.ticks",
	"stdin":     "host.stdin",
	"hz":        "timer.hz",
	"routing":   "routing",
	"log-level": "log.level",
}

// Load parses args and returns the validated configuration. A --help in args
// yields pflag.ErrHelp.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bootcfg: bind --%s: %w", name, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("bootcfg: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("bootcfg: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("bootcfg: %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("bootcfg: %w", err)
	}
	return nil
}

// Kernel converts the configuration into kernel tunables.
func (c *Config) Kernel() kernel.Config {
	routing := kernel.RouteTask
	if c.Routing == "queue" {
		routing = kernel.RouteQueue
	}
	return kernel.Config{
		Scheduler: kernel.SchedulerConfig{
			MaxLevel:        c.Sched.MaxLevel,
			DefaultLevel:    c.Sched.DefaultLevel,
			StackBytes:      c.Sched.StackBytes,
			MailboxCapacity: c.Sched.MailboxCapacity,
		},
		TimerHz:           c.Timer.Hz,
		PreemptTicks:      c.Timer.PreemptTicks,
		CalibrationMillis: c.Timer.CalibrationMillis,
		Routing:           routing,
	}
}

// LogLevel returns the parsed log level; Validate has already vetted it.
func (c *Config) LogLevel() klog.Level {
	level, _ := klog.ParseLevel(c.Log.Level)
	return level
}
