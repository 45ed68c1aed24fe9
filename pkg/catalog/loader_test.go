package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/catalog-loader/internal/testutil"
	"github.com/Sternrassler/catalog-loader/pkg/client"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const fakeIndex = "http://fake.test/api/v2/pokemon"

func newTestLoader(t *testing.T, g Getter, cfg Config) *Loader {
	t.Helper()
	l, err := New(g, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func newHTTPLoader(t *testing.T) *Loader {
	t.Helper()
	c, err := client.New(client.DefaultConfig("catalog-test/1.0"))
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return newTestLoader(t, c, DefaultConfig())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		getter  Getter
		cfg     Config
		wantErr string
	}{
		{name: "valid", getter: newFakeGetter(), cfg: Config{}},
		{name: "bounded", getter: newFakeGetter(), cfg: Config{Concurrency: 4, ItemTimeout: time.Second}},
		{name: "nil getter", getter: nil, wantErr: "getter is required"},
		{name: "negative concurrency", getter: newFakeGetter(), cfg: Config{Concurrency: -1}, wantErr: "concurrency must be >= 0 (got -1)"},
		{name: "negative timeout", getter: newFakeGetter(), cfg: Config{ItemTimeout: -time.Second}, wantErr: "item timeout must be >= 0 (got -1s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.getter, tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("New() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("New() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_AllDetailsSucceed_IndexOrder(t *testing.T) {
	g := newFakeGetter()
	n := 6
	entries := make([]IndexEntry, 0, n)
	want := make([]EntitySummary, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("entity-%d", i)
		u := fmt.Sprintf("http://fake.test/p/%d", i)
		entries = append(entries, IndexEntry{Name: name, DetailURL: u})
		want = append(want, EntitySummary{Name: name, Type: "normal"})
		// earlier entries answer later
		g.handle(u, delayed(time.Duration(n-i)*5*time.Millisecond, jsonBody(detailJSON("", "normal"))))
	}
	g.handle(fakeIndex+"?limit=6", jsonBody(indexJSON(entries...)))

	state := newTestLoader(t, g, DefaultConfig()).Load(context.Background(), fakeIndex, n)

	if state.Status != StatusReady {
		t.Fatalf("Status = %s, want ready (cause %v)", state.Status, state.Cause)
	}
	if diff := cmp.Diff(want, state.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if state.ID == "" {
		t.Error("ID should be set")
	}
}

func TestLoad_PartialFailures(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		failed map[int]bool
	}{
		{name: "none fail", n: 4, failed: map[int]bool{}},
		{name: "first fails", n: 4, failed: map[int]bool{0: true}},
		{name: "middle fail", n: 5, failed: map[int]bool{1: true, 3: true}},
		{name: "last fails", n: 3, failed: map[int]bool{2: true}},
		{name: "all fail", n: 3, failed: map[int]bool{0: true, 1: true, 2: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeGetter()
			var entries []IndexEntry
			var want []string
			for i := 0; i < tt.n; i++ {
				name := fmt.Sprintf("e%d", i)
				u := fmt.Sprintf("http://fake.test/p/%d", i)
				entries = append(entries, IndexEntry{Name: name, DetailURL: u})
				if tt.failed[i] {
					g.handle(u, failing(errors.New("boom")))
					continue
				}
				want = append(want, name)
				g.handle(u, jsonBody(detailJSON("", "t")))
			}
			g.handle(fakeIndex+fmt.Sprintf("?limit=%d", tt.n), jsonBody(indexJSON(entries...)))

			state := newTestLoader(t, g, DefaultConfig()).Load(context.Background(), fakeIndex, tt.n)

			if state.Status != StatusReady {
				t.Fatalf("Status = %s, want ready", state.Status)
			}
			if state.Error != "" {
				t.Errorf("Error = %q, detail failures must not surface", state.Error)
			}
			if len(state.Entries) != tt.n-len(tt.failed) {
				t.Errorf("len(Entries) = %d, want %d", len(state.Entries), tt.n-len(tt.failed))
			}
			got := make([]string, 0, len(state.Entries))
			for _, e := range state.Entries {
				got = append(got, e.Name)
			}
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("survivor order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_IndexFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *testutil.MockCatalog)
	}{
		{
			name:  "server error",
			setup: func(m *testutil.MockCatalog) { m.SetResponse(testutil.IndexPath, testutil.NewServerErrorResponse()) },
		},
		{
			name:  "not found",
			setup: func(m *testutil.MockCatalog) { m.SetResponse(testutil.IndexPath, testutil.NewNotFoundResponse()) },
		},
		{
			name:  "malformed body",
			setup: func(m *testutil.MockCatalog) { m.SetResponse(testutil.IndexPath, testutil.NewMalformedResponse()) },
		},
		{
			name: "missing results",
			setup: func(m *testutil.MockCatalog) {
				m.SetResponse(testutil.IndexPath, testutil.NewJSONResponse(`{"count":0}`))
			},
		},
		{
			name: "null results",
			setup: func(m *testutil.MockCatalog) {
				m.SetResponse(testutil.IndexPath, testutil.NewJSONResponse(`{"results":null}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCatalog()
			defer mock.Close()
			mock.SetDetail(testutil.Entity{ID: 1, Name: "bulbasaur"})
			tt.setup(mock)

			state := newHTTPLoader(t).Load(context.Background(), mock.IndexURL(), 10)

			if state.Status != StatusFailed {
				t.Fatalf("Status = %s, want failed", state.Status)
			}
			if state.Error == "" {
				t.Error("Error message should not be empty")
			}
			if state.Entries != nil {
				t.Errorf("Entries = %v, want no partial collection", state.Entries)
			}
			if !errors.Is(state.Cause, ErrIndexFetch) {
				t.Errorf("Cause = %v, want ErrIndexFetch", state.Cause)
			}
			if mock.RequestsFor("/api/v2/pokemon/1/") != 0 {
				t.Error("no detail request should be issued after an index failure")
			}
		})
	}
}

func TestLoad_IndexNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	indexURL := server.URL + "/api/v2/pokemon"
	server.Close()

	state := newHTTPLoader(t).Load(context.Background(), indexURL, 10)

	if state.Status != StatusFailed || state.Error != FailureMessage {
		t.Errorf("state = %+v, want failed with %q", state, FailureMessage)
	}
	if client.ClassOf(state.Cause) != client.ErrorClassNetwork {
		t.Errorf("ClassOf(Cause) = %q, want network", client.ClassOf(state.Cause))
	}
}

func TestLoad_RelativeDetailURLs_Scenario(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	sprite := "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/1.png"
	mock.SetResponse(testutil.IndexPath, testutil.NewJSONResponse(
		`{"results":[{"name":"ditto","url":"/p/132"},{"name":"bulbasaur","url":"/p/1"}]}`))
	mock.SetResponse("/p/132", testutil.NewJSONResponse(
		`{"sprites":{"front_default":null},"types":[{"slot":1,"type":{"name":"normal"}}]}`))
	mock.SetResponse("/p/1", testutil.NewJSONResponse(
		`{"sprites":{"front_default":"`+sprite+`"},"types":[{"slot":1,"type":{"name":"grass"}},{"slot":2,"type":{"name":"poison"}}]}`))

	state := newHTTPLoader(t).Load(context.Background(), mock.IndexURL(), 2)

	want := []EntitySummary{
		{Name: "ditto", Type: "normal"},
		{Name: "bulbasaur", Type: "grass, poison", Image: sprite},
	}
	if state.Status != StatusReady {
		t.Fatalf("Status = %s, want ready (cause %v)", state.Status, state.Cause)
	}
	if diff := cmp.Diff(want, state.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FirstDetailFails_Scenario(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetCatalog(
		testutil.Entity{ID: 132, Name: "ditto", Types: []string{"normal"}},
		testutil.Entity{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}, Sprite: "https://img.test/1.png"},
	)
	mock.SetDetailResponse(132, testutil.NewServerErrorResponse())

	state := newHTTPLoader(t).Load(context.Background(), mock.IndexURL(), 2)

	want := []EntitySummary{{Name: "bulbasaur", Type: "grass, poison", Image: "https://img.test/1.png"}}
	if diff := cmp.Diff(want, state.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MalformedDetailDropped(t *testing.T) {
	tests := []struct {
		name string
		resp testutil.MockResponse
	}{
		{"not json", testutil.NewMalformedResponse()},
		{"null body", testutil.NewJSONResponse(`null`)},
		{"empty object", testutil.NewJSONResponse(`{}`)},
		{"missing types", testutil.NewJSONResponse(`{"sprites":{"front_default":null}}`)},
		{"null types", testutil.NewJSONResponse(`{"sprites":{"front_default":null},"types":null}`)},
		{"null type record", testutil.NewJSONResponse(`{"types":[{"slot":1,"type":null}]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCatalog()
			defer mock.Close()

			mock.SetCatalog(
				testutil.Entity{ID: 1, Name: "bulbasaur", Types: []string{"grass"}},
				testutil.Entity{ID: 4, Name: "charmander", Types: []string{"fire"}},
			)
			mock.SetDetailResponse(1, tt.resp)

			state := newHTTPLoader(t).Load(context.Background(), mock.IndexURL(), 2)

			if state.Status != StatusReady {
				t.Fatalf("Status = %s, want ready", state.Status)
			}
			want := []EntitySummary{{Name: "charmander", Type: "fire"}}
			if diff := cmp.Diff(want, state.Entries); diff != "" {
				t.Errorf("Entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_IndexRowsWithoutDetailURLDropped(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetDetail(testutil.Entity{ID: 4, Name: "charmander", Types: []string{"fire"}})
	mock.SetResponse(testutil.IndexPath, testutil.NewJSONResponse(
		`{"results":[{"name":"ghost","url":""},null,{"name":"nourl"},{"name":"charmander","url":"/api/v2/pokemon/4/"}]}`))

	state := newHTTPLoader(t).Load(context.Background(), mock.IndexURL(), 4)

	want := []EntitySummary{{Name: "charmander", Type: "fire"}}
	if diff := cmp.Diff(want, state.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if got := mock.RequestsFor(testutil.IndexPath); got != 1 {
		t.Errorf("index requests = %d, want 1 (rows without a url must not re-request the index)", got)
	}
}

func TestResolve_EmptyDetailURLIsMalformed(t *testing.T) {
	g := newFakeGetter()

	results := newTestLoader(t, g, Config{}).Resolve(context.Background(), []IndexEntry{{Name: "ghost"}})

	if results[0].OK() {
		t.Fatal("entry without a detail url should become a sentinel")
	}
	if !errors.Is(results[0].Err, client.ErrMalformedPayload) || !errors.Is(results[0].Err, ErrDetailFetch) {
		t.Errorf("Err = %v, want ErrDetailFetch wrapping ErrMalformedPayload", results[0].Err)
	}
	if client.ClassOf(results[0].Err) != client.ErrorClassDecode {
		t.Errorf("ClassOf(Err) = %q, want decode", client.ClassOf(results[0].Err))
	}
	if g.callCount() != 0 {
		t.Errorf("calls = %d, want no request issued", g.callCount())
	}
}

func TestLoad_EmptyCatalogMatchesAllFailed(t *testing.T) {
	empty := newFakeGetter()
	empty.handle(fakeIndex+"?limit=2", jsonBody(`{"results":[]}`))

	allFailed := newFakeGetter()
	allFailed.handle(fakeIndex+"?limit=2", jsonBody(indexJSON(
		IndexEntry{Name: "a", DetailURL: "http://fake.test/p/a"},
		IndexEntry{Name: "b", DetailURL: "http://fake.test/p/b"},
	)))

	a := newTestLoader(t, empty, Config{}).Load(context.Background(), fakeIndex, 2)
	b := newTestLoader(t, allFailed, Config{}).Load(context.Background(), fakeIndex, 2)

	for _, s := range []LoadState{a, b} {
		if s.Status != StatusReady || s.Error != "" || len(s.Entries) != 0 || s.Entries == nil {
			t.Errorf("state = %+v, want ready with an empty, non-nil collection", s)
		}
	}
}

func TestLoad_AppliesLimit(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.SetCatalog(testutil.Entity{ID: 1, Name: "bulbasaur"})

	newHTTPLoader(t).Load(context.Background(), mock.IndexURL()+"?limit=5&offset=0", 1302)

	got := mock.LastIndexURL()
	if !strings.Contains(got, "limit=1302") || strings.Contains(got, "limit=5") {
		t.Errorf("index request = %q, want limit=1302 replacing limit=5", got)
	}
	if !strings.Contains(got, "offset=0") {
		t.Errorf("index request = %q, want other query parameters kept", got)
	}
	if mock.RequestsFor(testutil.IndexPath) != 1 {
		t.Errorf("index requests = %d, want exactly one page", mock.RequestsFor(testutil.IndexPath))
	}
}

func TestWithLimit(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"http://x.test/p", 10, "http://x.test/p?limit=10"},
		{"http://x.test/p?limit=3", 10, "http://x.test/p?limit=10"},
		{"http://x.test/p?a=1", 0, "http://x.test/p?a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			u := mustParse(t, tt.in)
			if got := withLimit(u, tt.limit).String(); got != tt.want {
				t.Errorf("withLimit() = %q, want %q", got, tt.want)
			}
			if u.String() != tt.in {
				t.Errorf("input mutated to %q", u.String())
			}
		})
	}
}

func TestResolve_ExposesPreFilterResults(t *testing.T) {
	g := newFakeGetter()
	g.handle("http://fake.test/p/1", jsonBody(detailJSON("", "grass")))
	g.handle("http://fake.test/p/2", failing(errors.New("gone")))

	entries := []IndexEntry{
		{Name: "one", DetailURL: "http://fake.test/p/1"},
		{Name: "two", DetailURL: "http://fake.test/p/2"},
	}
	results := newTestLoader(t, g, Config{}).Resolve(context.Background(), entries)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].OK() || results[0].Summary.Type != "grass" {
		t.Errorf("results[0] = %+v, want ok", results[0])
	}
	if results[1].OK() {
		t.Fatal("results[1] should be a sentinel")
	}
	var dfe *DetailFetchError
	if !errors.As(results[1].Err, &dfe) || dfe.Name != "two" {
		t.Errorf("results[1].Err = %v, want *DetailFetchError for two", results[1].Err)
	}
	if !errors.Is(results[1].Err, ErrDetailFetch) {
		t.Error("errors.Is(ErrDetailFetch) should hold")
	}
	if results[1].Entry != entries[1] {
		t.Errorf("results[1].Entry = %+v, want positional alignment", results[1].Entry)
	}

	if diff := cmp.Diff([]EntitySummary{{Name: "one", Type: "grass"}}, Survivors(results)); diff != "" {
		t.Errorf("Survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_PanicIsCaughtAtItemBoundary(t *testing.T) {
	g := newFakeGetter()
	g.handle("http://fake.test/p/1", func(context.Context, any) error { panic("decoder exploded") })
	g.handle("http://fake.test/p/2", jsonBody(detailJSON("", "water")))

	results := newTestLoader(t, g, Config{}).Resolve(context.Background(), []IndexEntry{
		{Name: "one", DetailURL: "http://fake.test/p/1"},
		{Name: "two", DetailURL: "http://fake.test/p/2"},
	})

	if results[0].OK() {
		t.Error("panicking entry should become a sentinel")
	}
	if !results[1].OK() {
		t.Errorf("sibling failed: %v", results[1].Err)
	}
}

func TestResolve_BoundedConcurrency(t *testing.T) {
	g := newFakeGetter()
	var entries []IndexEntry
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("http://fake.test/p/%d", i)
		entries = append(entries, IndexEntry{Name: fmt.Sprint(i), DetailURL: u})
		g.handle(u, delayed(time.Millisecond, jsonBody(detailJSON(""))))
	}

	results := newTestLoader(t, g, Config{Concurrency: 2}).Resolve(context.Background(), entries)

	if got := len(Survivors(results)); got != 10 {
		t.Errorf("survivors = %d, want 10", got)
	}
	if g.callCount() != 10 {
		t.Errorf("calls = %d, want 10", g.callCount())
	}
}

func TestIndexFetchError(t *testing.T) {
	cause := errors.New("refused")
	err := error(&IndexFetchError{URL: "http://x.test/i", Err: cause})

	if !errors.Is(err, ErrIndexFetch) || !errors.Is(err, cause) {
		t.Error("IndexFetchError should match ErrIndexFetch and its cause")
	}
	if errors.Is(err, ErrDetailFetch) {
		t.Error("IndexFetchError must not match ErrDetailFetch")
	}
	if got, want := err.Error(), "fetch catalog index http://x.test/i: refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
