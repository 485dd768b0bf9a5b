package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/domain"
)

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func newRemoteFor(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemote(RemoteConfig{
		URL:         srv.URL,
		APIKey:      "test-key",
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.1,
		Timeout:     2 * time.Second,
	}, srv.Client(), nil)
}

func TestRemoteSendsStrictJSONRequest(t *testing.T) {
	var got chatRequest
	remote := newRemoteFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion(`{"sentiment":"angry","category":"Ragging"}`)))
	})

	res, err := remote.Classify(context.Background(), "seniors made me do push-ups at midnight")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentAngry, res.Sentiment)
	assert.Equal(t, domain.CategoryRagging, res.Category)
	assert.Equal(t, domain.OriginRemote, res.SentimentOrigin)
	assert.Equal(t, domain.OriginRemote, res.CategoryOrigin)

	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Canteen/Hygiene")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "seniors made me do push-ups at midnight", got.Messages[1].Content)
}

func TestRemoteFailuresAreUnavailable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"rate limited": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(completion(`{"sentiment":"ANGRY","category":"Other"}`)))
		},
		"garbage body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		},
		"no choices": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"content not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(completion("```json\n{}\n```")))
		},
		"unknown labels": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(completion(`{"sentiment":"ELATED","category":"Parking"}`)))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newRemoteFor(t, handler).Classify(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestRemoteKeepsRecognisedFieldsOnly(t *testing.T) {
	remote := newRemoteFor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completion(`{"sentiment":"SATISFIED","category":"Parking"}`)))
	})
	res, err := remote.Classify(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentSatisfied, res.Sentiment)
	assert.Empty(t, res.Category)
}

func TestRemoteDisabledWithoutKey(t *testing.T) {
	remote := NewRemote(RemoteConfig{URL: "http://127.0.0.1:1"}, nil, nil)
	assert.False(t, remote.Enabled())
	_, err := remote.Classify(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRemoteHonoursCancellation(t *testing.T) {
	remote := newRemoteFor(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := remote.Classify(ctx, "text")
	assert.ErrorIs(t, err, ErrUnavailable)
}
