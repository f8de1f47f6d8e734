package whisper

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o755))
	return path
}

func TestNewServer(t *testing.T) {
	bin, model := touch(t, "whisper-server"), touch(t, "ggml-base.bin")

	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"missing binary", ServerConfig{BinaryPath: "/nonexistent/whisper-server", ModelPath: model}, true},
		{"missing model", ServerConfig{BinaryPath: bin, ModelPath: "/nonexistent/model.bin"}, true},
		{"defaults", ServerConfig{BinaryPath: bin, ModelPath: model}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://127.0.0.1:8080", s.Address())
			assert.False(t, s.IsRunning())
		})
	}
}

func TestStart_AdoptsRunningServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	s, err := NewServer(ServerConfig{
		BinaryPath: touch(t, "whisper-server"),
		ModelPath:  touch(t, "ggml-base.bin"),
		Host:       host,
		Port:       port,
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(testContext(t)))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(testContext(t)), ErrAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// the adopted server is still serving
	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
