package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Microservice is the companion service reachable through ping and echo
type Microservice interface {
	Ping(ctx context.Context) (map[string]any, error)
	Echo(ctx context.Context, msg string) (map[string]any, error)
}

type microservice struct {
	base  string
	httpc *http.Client
}

// NewMicroservice creates a client for the service at base
func NewMicroservice(base string) Microservice {
	return &microservice{
		base:  strings.TrimRight(base, "/"),
		httpc: &http.Client{Timeout: 5 * time.Second},
	}
}

func (m *microservice) Ping(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.base+"/health", nil)
	if err != nil {
		return nil, err
	}
	return m.do(req)
}

func (m *microservice) Echo(ctx context.Context, msg string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"msg": msg})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/echo", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return m.do(req)
}

func (m *microservice) do(req *http.Request) (map[string]any, error) {
	resp, err := m.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %s", ErrUpstream, req.Method, req.URL.Path, resp.Status)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return out, nil
}
