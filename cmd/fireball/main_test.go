package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yaml")
}

func TestDefaultsPrintsLoadableYAML(t *testing.T) {
	out, err := execute(t, "defaults")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load printed defaults: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("printed defaults load as %+v", cfg)
	}
}

// rows parses the mesh table into level -> [vertices, triangles].
func rows(out string) map[string][2]string {
	got := make(map[string][2]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 4 && fields[0] != "LEVEL" {
			got[fields[0]] = [2]string{fields[1], fields[2]}
		}
	}
	return got
}

func TestMeshPrintsEveryLevel(t *testing.T) {
	out, err := execute(t, "mesh", "--config", missingConfig(t), "--level", "2")
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	want := map[string][2]string{
		"0": {"12", "20"},
		"1": {"42", "80"},
		"2": {"162", "320"},
	}
	got := rows(out)
	for level, counts := range want {
		if got[level] != counts {
			t.Errorf("level %s = %v, want %v\n%s", level, got[level], counts, out)
		}
	}
	if !strings.Contains(out, "built 3 level(s)") {
		t.Errorf("output missing summary:\n%s", out)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("fireball:\n  level: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "mesh", "--config", path, "--level", "1", "--single")
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	got := rows(out)
	if len(got) != 1 || got["1"] != [2]string{"42", "80"} {
		t.Errorf("rows = %v, want only level 1\n%s", got, out)
	}
}

func TestFlagOutOfRangeIsRejected(t *testing.T) {
	_, err := execute(t, "mesh", "--config", missingConfig(t), "--level", "9")
	if !errors.Is(err, common.ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestBadConfigFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("fireball: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "mesh", "--config", path); err == nil {
		t.Error("expected error for malformed config")
	}
}
