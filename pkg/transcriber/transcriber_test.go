package transcriber

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestOpenAI_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "memo.m4a", hdr.Filename)
		assert.Equal(t, "audio", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"buy milk"}`))
	}))
	defer srv.Close()

	tr, err := New(Config{APIKey: "secret", APIURL: srv.URL, Logger: quiet()})
	require.NoError(t, err)

	res, err := tr.Transcribe(testContext(t), []byte("audio"), "memo.m4a", "en")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", res.Text)
	assert.Equal(t, "en", res.Language)
}

func TestOpenAI_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr, err := New(Config{APIKey: "secret", APIURL: srv.URL, Logger: quiet()})
	require.NoError(t, err)

	_, err = tr.Transcribe(testContext(t), []byte("audio"), "memo.wav", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestLocal_TranscribeAndHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inference", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "json", r.FormValue("response-format"))
		_, _ = w.Write([]byte(`{"text":"call mom","language":"en","segments":[{"id":0,"start":0,"end":1.5,"text":"call mom"}]}`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := NewLocal(LocalConfig{ServerURL: srv.URL + "/", Logger: quiet()})
	require.NoError(t, tr.Health(testContext(t)))

	res, err := tr.Transcribe(testContext(t), []byte("audio"), "memo.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "call mom", res.Text)
	assert.Equal(t, "en", res.Language)
	require.Len(t, res.Segments, 1)
}

var (
	_ Transcriber = (*OpenAI)(nil)
	_ Transcriber = (*Local)(nil)
)
