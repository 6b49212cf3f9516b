package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

func speechConfig(endpoint string) config.ElevenLabsConfig {
	return config.ElevenLabsConfig{
		Endpoint: endpoint,
		VoiceID:  "voice-1",
		ModelID:  "eleven_monolingual_v1",
		VoiceSettings: config.VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
		TimeoutSecs: 5,
	}
}

func newTestSpeechClient(t *testing.T, endpoint, apiKey string) *ElevenLabsClient {
	t.Helper()
	c, err := NewElevenLabsClient(speechConfig(endpoint), apiKey, logger.NewNop())
	require.NoError(t, err)
	c.retry = fastRetry
	return c
}

func TestSynthesizeSuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		var req ttsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi there", req.Text)
		assert.Equal(t, "eleven_monolingual_v1", req.ModelID)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{1, 2, 3})
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	audio, err := c.Synthesize(context.Background(), "hi there")

	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, audio)
	assert.Equal(t, 1, calls)
}

func TestSynthesizeRejectsLongTextBeforeTransport(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	_, err := c.Synthesize(context.Background(), strings.Repeat("x", MaxSpeechChars+1))

	require.ErrorIs(t, err, ErrCharacterLimitExceeded)
	assert.Equal(t, 0, calls)
}

func TestSynthesizeMissingKey(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "")
	_, err := c.Synthesize(context.Background(), "hi")

	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, 0, calls)
}

func TestSynthesizeQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	_, err := c.Synthesize(context.Background(), "hi")

	require.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSynthesizeVoiceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":{"status":"voice_not_found","message":"no such voice"}}`))
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	_, err := c.Synthesize(context.Background(), "hi")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.ServiceElevenLabs, notFound.Service)
	assert.Equal(t, "voice-1", notFound.Resource)
}

func TestSynthesizeErrorDetailParsing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail object", `{"detail":{"status":"bad","message":"detailed failure"}}`, "detailed failure"},
		{"detail string", `{"detail":"plain failure"}`, "plain failure"},
		{"unstructured body", `gateway exploded`, "gateway exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestSpeechClient(t, srv.URL, "secret")
			_, err := c.Synthesize(context.Background(), "hi")

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
			assert.Equal(t, tt.want, reqErr.Message)
		})
	}
}

func TestSynthesizeRecoversMidRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte{9})
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	audio, err := c.Synthesize(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, []byte{9}, audio)
	assert.Equal(t, 2, calls)
}

func TestVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":[{"voice_id":"voice-1","name":"Rachel","category":"premade"}]}`))
	}))
	defer srv.Close()

	c := newTestSpeechClient(t, srv.URL, "secret")
	voices, err := c.Voices(context.Background())

	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "voice-1", voices[0].VoiceID)
	assert.Equal(t, "Rachel", voices[0].Name)
}

func TestSpeechProbe(t *testing.T) {
	tests := []struct {
		status int
		up     bool
	}{
		{http.StatusOK, true},
		{http.StatusUnauthorized, true},
		{http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		c := newTestSpeechClient(t, srv.URL, "secret")
		r := c.Probe(context.Background())
		assert.Equal(t, tt.up, r.Up, "status %d", tt.status)

		srv.Close()
	}
}
