package buildinfo

import (
	"strings"
	"testing"
)

func TestShortPrefersVersion(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "v1.2.3", "abcdef0123456789"
	if got := Short(); got != "v1.2.3" {
		t.Fatalf("Short() = %q, want %q", got, "v1.2.3")
	}
	Version = "dev"
	if got := Short(); got != "abcdef012345" {
		t.Fatalf("Short() = %q, want %q", got, "abcdef012345")
	}
}

func TestString(t *testing.T) {
	defer func(c string) { Commit = c }(Commit)
	Commit = "abc"
	if got := String(); !strings.Contains(got, "commit abc") {
		t.Fatalf("String() = %q, want commit abc", got)
	}
}
