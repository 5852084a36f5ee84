package klog

import (
	"bytes"
	"testing"
)

type lines struct {
	got []string
}

func (l *lines) WriteLineString(s string) { l.got = append(l.got, s) }
func (l *lines) WriteLineBytes(b []byte)  { l.got = append(l.got, string(b)) }

func TestLoggerFiltersByLevel(t *testing.T) {
	out := &lines{}
	log := New(out, LevelWarn)

	log.Infof("boot %d", 1)
	log.Warnf("mailbox %s", "full")
	log.Errorf("no task %d", 7)

	if len(out.got) != 2 {
		t.Fatalf("lines = %q, want 2 lines", out.got)
	}
	if out.got[0] != "[warn] mailbox full" {
		t.Fatalf("line 0 = %q, want %q", out.got[0], "[warn] mailbox full")
	}
	if out.got[1] != "[error] no task 7" {
		t.Fatalf("line 1 = %q, want %q", out.got[1], "[error] no task 7")
	}

	log.SetLevel(LevelDebug)
	log.Debugf("tick")
	if n := len(out.got); n != 3 {
		t.Fatalf("len(lines) = %d after SetLevel(debug), want 3", n)
	}
}

func TestLoggerMirrorsToConsole(t *testing.T) {
	var console bytes.Buffer
	log := New(nil, LevelInfo)
	log.AttachConsole(&console)

	log.Infof("hello")

	if got, want := console.String(), "[info] hello\n"; got != want {
		t.Fatalf("console = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q) err = %v", name, err)
		}
		if level.String() != name {
			t.Fatalf("ParseLevel(%q) = %v", name, level)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) err = nil, want error")
	}
}
