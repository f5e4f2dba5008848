package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
		want string
	}{
		{"default", "", nil, defaultConfigPath},
		{"env override", "/etc/gadgetd/env.yaml", nil, "/etc/gadgetd/env.yaml"},
		{"long flag beats env", "/etc/gadgetd/env.yaml", []string{"--config", "/tmp/flag.yaml"}, "/tmp/flag.yaml"},
		{"short flag", "", []string{"-c", "/tmp/short.yaml"}, "/tmp/short.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configEnvVar, tt.env)

			opts, err := parseFlags(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.configPath)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags([]string{"--bogus"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run(context.Background(), []string{"--version"}))
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [broken"), 0600))

	assert.Error(t, run(context.Background(), []string{"-c", path}))
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRun_StartupAndShutdown(t *testing.T) {
	t.Setenv("GADGETD_JWT_SECRET", "")
	dir := t.TempDir()
	port := freePort(t)

	for _, driver := range []string{"sqlite3", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(dir, driver+".yaml")
			content := fmt.Sprintf(`
database:
  driver: %q
  path: %q
api:
  host: "127.0.0.1"
  port: %d
logging:
  level: error
  format: text
security:
  jwt:
    secret: "startup-test-secret-at-least-32-chars"
  bcrypt_cost: 4
`, driver, filepath.Join(dir, driver+".db"), port)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- run(ctx, []string{"--config", path}) }()

			url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
			require.Eventually(t, func() bool {
				resp, err := http.Get(url)
				if err != nil {
					return false
				}
				resp.Body.Close()
				return resp.StatusCode == http.StatusOK
			}, 5*time.Second, 50*time.Millisecond, "server never became ready")

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(15 * time.Second):
				t.Fatal("run() did not return after cancel")
			}
		})
	}
}
