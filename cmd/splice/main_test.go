package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splice/internal/storage"
)

// writeTestConfig materializes a config file pointing every path at the
// test's temp directory, with isolated in-memory array storage.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	location := "cli-" + t.Name()
	t.Cleanup(func() { storage.ResetMemory(location) })

	content := fmt.Sprintf(`[paths]
data_dir = %q
registry_path = %q
log_dir = %q

[storage]
backend = "mem"
location = %q

[logging]
format = "console"
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "registry.db"),
		filepath.Join(base, "logs"),
		location,
	)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// memoryLocation returns the array storage location writeTestConfig wires up.
func memoryLocation(t *testing.T) string {
	return "cli-" + t.Name()
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

func TestRootCommandShowsHelp(t *testing.T) {
	configPath := writeTestConfig(t)

	out, _, err := runCLI(t, configPath)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "splice")
	requireContains(t, out, "Available Commands")
}
