package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

type step struct {
	resp *Response
	err  error
}

// scriptedTransport replays steps in order, repeating the last one
type scriptedTransport struct {
	mu    sync.Mutex
	steps []step
	calls []Request
}

func (s *scriptedTransport) Post(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.calls)
	s.calls = append(s.calls, req)
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i].resp, s.steps[i].err
}

func (s *scriptedTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func ok(body string) step {
	return step{resp: &Response{StatusCode: 200, Body: []byte(body)}}
}

func status(code int) step {
	return step{resp: &Response{StatusCode: code, Body: []byte(`{"error":{"code":` + strconv.Itoa(code) + `}}`)}}
}

// fakeText is a TextGenerator with canned output
type fakeText struct {
	text   string
	err    error
	calls  int
	apiKey string
	prompt string
}

func (f *fakeText) Generate(_ context.Context, apiKey, prompt string) (string, error) {
	f.calls++
	f.apiKey = apiKey
	f.prompt = prompt
	return f.text, f.err
}

// fakeImages is a PromptImageGenerator with a canned response
type fakeImages struct {
	mu      sync.Mutex
	resp    types.ImageGenerationResponse
	prompts []string
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string, _ bool) types.ImageGenerationResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.resp
}

func envless(override, fallback string) *CredentialResolver {
	r := NewCredentialResolver(override, "", fallback)
	r.lookupEnv = func(string) (string, bool) { return "", false }
	return r
}
