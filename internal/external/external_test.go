package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agropredict/internal/model"
)

func TestStubClimate(t *testing.T) {
	c, err := StubClimate{}.Current(context.Background(), model.Commune{Name: "Santiago"})
	require.NoError(t, err)
	assert.Equal(t, "Santiago", c.Commune)
	assert.Equal(t, 18.5, c.Temperature)
	assert.Equal(t, 65, c.Humidity)
	assert.Equal(t, "02d", c.Icon)
}

func TestChatAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && assert.NotEmpty(t, body.Messages) {
			assert.Equal(t, "test-model", body.Model)
			assert.Equal(t, "when to prune cherries?", body.Messages[len(body.Messages)-1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  After harvest.  "}}]}`))
	}))
	defer srv.Close()

	a := NewChatAssistant(srv.URL+"/", "secret", "test-model")
	answer, err := a.Ask(context.Background(), "when to prune cherries?")
	require.NoError(t, err)
	assert.Equal(t, "After harvest.", answer)
}

func TestChatAssistant_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			_, err := NewChatAssistant(srv.URL, "k", "m").Ask(context.Background(), "q")
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestMicroservice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"ok"}`))
		case "/echo":
			var in map[string]string
			json.NewDecoder(r.Body).Decode(&in)
			json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ms := NewMicroservice(srv.URL)
	out, err := ms.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])

	out, err = ms.Echo(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "hola", out["echo"])
}

func TestMicroservice_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewMicroservice(url).Ping(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
