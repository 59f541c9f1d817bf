package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// CLI runs the whole command layer in-process against a private home
// directory and a fake clock.
type CLI struct {
	t     *testing.T
	Dir   string
	Env   map[string]string
	Clock *fakeClock
}

// NewCLI creates a new test CLI. The clock starts at 2024-05-15 09:00 local time.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{
			"HOME":            dir,
			"XDG_CONFIG_HOME": filepath.Join(dir, "config"),
			"XDG_DATA_HOME":   filepath.Join(dir, "data"),
			"NO_COLOR":        "1",
		},
		Clock: &fakeClock{now: time.Date(2024, time.May, 15, 9, 0, 0, 0, time.Local)},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
func (c *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"tim"}, args...)
	code := run(nil, &outBuf, &errBuf, fullArgs, c.Env, nil, c.Clock.Now)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test unless it exits with code.
// Also fails if stdout is not empty. Returns trimmed stderr.
func (c *CLI) MustFail(code int, args ...string) string {
	c.t.Helper()

	stdout, stderr, got := c.Run(args...)
	if got != code {
		c.t.Fatalf("command %v exited %d, want %d\nstdout: %s\nstderr: %s", args, got, code, stdout, stderr)
	}

	if stdout != "" {
		c.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// WriteConfig writes the default config file.
func (c *CLI) WriteConfig(content string) string {
	c.t.Helper()

	path := filepath.Join(c.Env["XDG_CONFIG_HOME"], "tim", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.t.Fatalf("creating config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		c.t.Fatalf("writing config: %v", err)
	}
	return path
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
