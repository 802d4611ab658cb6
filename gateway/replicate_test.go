package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *ReplicateClient {
	c := NewReplicateClient("test-token")
	c.baseURL = srv.URL
	c.pollEvery = time.Millisecond
	return c
}

func TestRunSucceededPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"id":"p1","status":"succeeded","output":["https://cdn.example/img.png"]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Run(context.Background(), "stability-ai/sdxl", map[string]any{"prompt": "a fox"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	url, ok := res.FirstURL()
	if !ok || url != "https://cdn.example/img.png" {
		t.Errorf("FirstURL() = %q, %v", url, ok)
	}
}

func TestRunPollsUntilTerminal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			w.Write([]byte(`{"id":"p2","status":"processing","urls":{"get":""}}`))
		default:
			w.Write([]byte(`{"id":"p2","status":"succeeded","output":{"url":"https://cdn.example/clip.mp4"}}`))
		}
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Run(context.Background(), "bytedance/seedance-1-pro", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls < 2 {
		t.Errorf("expected at least one poll, got %d calls", calls)
	}
	url, ok := res.FirstURL()
	if !ok || url != "https://cdn.example/clip.mp4" {
		t.Errorf("FirstURL() = %q, %v", url, ok)
	}
}

func TestRunBackendFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"failed status", `{"id":"p3","status":"failed","error":"NSFW content detected"}`, 200},
		{"http error", `{"detail":"invalid token"}`, 401},
		{"malformed body", `not json at all`, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).Run(context.Background(), "some/model", nil)
			if err == nil {
				t.Fatal("Run() error = nil, want GatewayError")
			}
			var gwErr *Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("Run() error type = %T, want *gateway.Error", err)
			}
			if gwErr.Model != "some/model" {
				t.Errorf("error model = %q", gwErr.Model)
			}
		})
	}
}

func TestRunVersionedModelUsesGenericEndpoint(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"id":"p4","status":"succeeded","output":"https://cdn.example/a.png"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Run(context.Background(), "owner/model:abc123", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if path != "/predictions" {
		t.Errorf("request path = %q, want /predictions", path)
	}
}
