package buildinfo

import "testing"

func withBuild(t *testing.T, version, commit string) {
	t.Helper()
	oldV, oldC := Version, Commit
	Version, Commit = version, commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })
}

func TestShort(t *testing.T) {
	withBuild(t, "1.4", "unknown")
	if got := Short(); got != "v1.4.0" {
		t.Fatalf("Short() = %q, want v1.4.0", got)
	}

	withBuild(t, "nightly", "unknown")
	if got := Short(); got != "nightly" {
		t.Fatalf("Short() = %q, want nightly", got)
	}

	withBuild(t, "dev", "0123456789abcdef")
	if got := Short(); got != "0123456" {
		t.Fatalf("Short() = %q, want 0123456", got)
	}

	withBuild(t, "dev", "unknown")
	if got := Short(); got != "dev" {
		t.Fatalf("Short() = %q, want dev", got)
	}
}
