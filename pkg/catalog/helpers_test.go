package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"
)

// fakeGetter serves canned handlers by exact URL.
type fakeGetter struct {
	mu       sync.Mutex
	calls    []string
	handlers map[string]func(ctx context.Context, v any) error
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{handlers: make(map[string]func(ctx context.Context, v any) error)}
}

func (f *fakeGetter) GetJSON(ctx context.Context, rawURL string, v any) error {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	h, ok := f.handlers[rawURL]
	f.mu.Unlock()

	if !ok {
		return fmt.Errorf("no handler for %s", rawURL)
	}
	return h(ctx, v)
}

func (f *fakeGetter) handle(rawURL string, h func(ctx context.Context, v any) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[rawURL] = h
}

func (f *fakeGetter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func jsonBody(body string) func(ctx context.Context, v any) error {
	return func(_ context.Context, v any) error {
		return json.Unmarshal([]byte(body), v)
	}
}

func delayed(d time.Duration, h func(ctx context.Context, v any) error) func(ctx context.Context, v any) error {
	return func(ctx context.Context, v any) error {
		time.Sleep(d)
		return h(ctx, v)
	}
}

func failing(err error) func(ctx context.Context, v any) error {
	return func(context.Context, any) error { return err }
}

func indexJSON(entries ...IndexEntry) string {
	body, _ := json.Marshal(map[string]any{"results": entries})
	return string(body)
}

func detailJSON(sprite string, types ...string) string {
	slots := make([]TypeSlot, 0, len(types))
	for i, t := range types {
		slots = append(slots, TypeSlot{Slot: i + 1, Type: &NamedResource{Name: t}})
	}
	doc := map[string]any{"types": slots, "sprites": map[string]any{"front_default": nil}}
	if sprite != "" {
		doc["sprites"] = map[string]any{"front_default": sprite}
	}
	body, _ := json.Marshal(doc)
	return string(body)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
