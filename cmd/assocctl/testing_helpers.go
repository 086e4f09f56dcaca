package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// resetFlags restores every package-level flag variable to its default.
func resetFlags() {
	configPath = ""
	storeBackend = ""
	regFilePath = ""
	programName = ""
	verbosity = 0
	quiet = false
	jsonOut = false
	noColor = true
	applyRemove = false
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	return captureOutput(t, rootCmd.Execute)
}

// cliEnv is a scratch directory holding an executable, a config file and
// the .reg file that backs the store. extraConfig lines may refer to the
// executable as {exe}.
type cliEnv struct {
	dir     string
	exe     string
	regFile string
	config  string
}

func newCLIEnv(t *testing.T, extraConfig string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliEnv{
		dir:     dir,
		exe:     filepath.Join(dir, "plotter.exe"),
		regFile: filepath.Join(dir, "user.reg"),
		config:  filepath.Join(dir, "config.toml"),
	}
	if err := os.WriteFile(e.exe, []byte("MZ"), 0o755); err != nil {
		t.Fatal(err)
	}
	extraConfig = strings.ReplaceAll(extraConfig, "{exe}", e.exe)
	body := "program = \"Plotter\"\n" + extraConfig + "\n[store]\nbackend = \"regfile\"\nreg_file = '" + e.regFile + "'\nencoding = \"UTF-8\"\n"
	if err := os.WriteFile(e.config, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return e
}

// seed writes a UTF-8 .reg file with the given body below the header.
func (e *cliEnv) seed(t *testing.T, body string) {
	t.Helper()
	data := "Windows Registry Editor Version 5.00\r\n\r\n" + body
	if err := os.WriteFile(e.regFile, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *cliEnv) regText(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.regFile)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
