package buildinfo

import (
	"strings"
	"testing"
)

func TestGetPrefersLdflags(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })
	Version, Commit, Date = "v1.2.3", "abc123", "2024-03-01T00:00:00Z"

	got := Get()
	if got != (Info{Version: "v1.2.3", Commit: "abc123", Date: "2024-03-01T00:00:00Z"}) {
		t.Errorf("Get() = %+v", got)
	}
	if Generator() != "railgen v1.2.3" {
		t.Errorf("Generator() = %q", Generator())
	}
	if !strings.Contains(Template(), "version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(got.String(), "version: v1.2.3\ncommit: abc123") {
		t.Errorf("String() = %q", got.String())
	}
}

func TestGetDefaults(t *testing.T) {
	if Get().Version == "" {
		t.Error("Version is empty")
	}
}
