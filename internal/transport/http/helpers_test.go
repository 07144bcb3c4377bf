package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"quizverse/internal/app"
	"quizverse/internal/content"
	"quizverse/internal/identity"
	"quizverse/internal/infra/memory"
)

// chanTicks lets a test drive the countdown by hand.
type chanTicks struct{ ch chan time.Time }

func (c chanTicks) C() <-chan time.Time { return c.ch }
func (c chanTicks) Stop()               {}

type testEnv struct {
	server   *httptest.Server
	verifier *identity.Verifier
	ticks    chan time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := content.NewRepository(memory.NewRecordStore())
	if _, err := repo.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ticks := make(chan time.Time)
	cache := memory.NewQuizRepository(repo, time.Minute)
	player := app.NewPlayerService(memory.NewAttemptStore(), cache, zerolog.New(io.Discard),
		app.WithTickSource(func() app.TickSource { return chanTicks{ch: ticks} }),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	verifier := identity.NewVerifier("test-secret")
	router := NewRouter(RouterDeps{
		Player:   player,
		Content:  repo,
		Cache:    cache,
		Verifier: verifier,
		Admin:    identity.NewAdminAuthenticator("admin@quizverse.dev", string(hash), verifier, time.Hour),
		Log:      zerolog.New(io.Discard),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, verifier: verifier, ticks: ticks}
}

// do sends a JSON request and decodes the envelope's data into out when given.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, out interface{}) (int, Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *ErrorBody      `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return resp.StatusCode, Response{Error: envelope.Error}
}
