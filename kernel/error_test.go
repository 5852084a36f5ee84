package kernel

import (
	"errors"
	"strings"
	"testing"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{Success, "success"},
		{Full, "queue full"},
		{Empty, "queue empty"},
		{NoSuchTask, "no such task"},
		{InvalidLevel, "invalid level"},
		{NotImplemented, "not implemented"},
		{Code(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Fatalf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMakeErrorRecordsCaller(t *testing.T) {
	err := makeError(NotImplemented)

	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("errors.Is(%v, ErrNotImplemented) = false, want true", err)
	}
	if errors.Is(err, ErrFull) {
		t.Fatalf("errors.Is(%v, ErrFull) = true, want false", err)
	}
	if !strings.HasPrefix(err.Error(), "not implemented (error_test.go:") {
		t.Fatalf("Error() = %q, want caller location", err.Error())
	}
	if got := ErrNoSuchTask.Error(); got != "no such task" {
		t.Fatalf("ErrNoSuchTask.Error() = %q, want %q", got, "no such task")
	}
}
