// Package testutil provides an in-process fake of the catalog API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// IndexPath is where the fake serves the paginated index.
const IndexPath = "/api/v2/pokemon"

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is a configurable httptest server shaped like PokeAPI.
type MockCatalog struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount  int
	requestsByURL map[string]int
	lastIndexURL  string
	lastHeader    http.Header
}

// NewMockCatalog starts a new fake server.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		handlers:      make(map[string]http.HandlerFunc),
		requestsByURL: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.requestsByURL[r.URL.Path]++
		mock.lastHeader = r.Header.Clone()
		if r.URL.Path == IndexPath {
			mock.lastIndexURL = r.URL.String()
		}
		handler, ok := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the server base URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// IndexURL returns the absolute URL of the index endpoint.
func (m *MockCatalog) IndexURL() string {
	return m.server.URL + IndexPath
}

// DetailURL returns the absolute URL used for entity id.
func (m *MockCatalog) DetailURL(id int) string {
	return m.server.URL + detailPath(id)
}

// Close shuts down the server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetHandler installs a handler for path.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse installs a canned response for path.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Entity describes one fake catalog entry.
type Entity struct {
	ID     int
	Name   string
	Types  []string
	Sprite string // empty serves "front_default": null
}

// SetCatalog serves index and detail documents for entities, in order.
func (m *MockCatalog) SetCatalog(entities ...Entity) {
	m.SetIndex(entities...)
	for _, e := range entities {
		m.SetDetail(e)
	}
}

// SetIndex serves an index listing entities, pointing at their detail URLs.
func (m *MockCatalog) SetIndex(entities ...Entity) {
	m.SetResponse(IndexPath, NewJSONResponse(m.IndexBody(entities...)))
}

// IndexBody renders the index document for entities.
func (m *MockCatalog) IndexBody(entities ...Entity) string {
	type result struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := make([]result, 0, len(entities))
	for _, e := range entities {
		results = append(results, result{Name: e.Name, URL: m.DetailURL(e.ID)})
	}
	body, _ := json.Marshal(map[string]any{
		"count":    len(entities),
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
	return string(body)
}

// SetDetail serves the detail document for e.
func (m *MockCatalog) SetDetail(e Entity) {
	m.SetResponse(detailPath(e.ID), NewJSONResponse(DetailBody(e)))
}

// SetDetailResponse overrides the detail endpoint of id with resp.
func (m *MockCatalog) SetDetailResponse(id int, resp MockResponse) {
	m.SetResponse(detailPath(id), resp)
}

// DetailBody renders a PokeAPI-like detail document.
func DetailBody(e Entity) string {
	type named struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	type slot struct {
		Slot int   `json:"slot"`
		Type named `json:"type"`
	}
	types := make([]slot, 0, len(e.Types))
	for i, t := range e.Types {
		types = append(types, slot{Slot: i + 1, Type: named{Name: t, URL: "https://pokeapi.co/api/v2/type/" + t + "/"}})
	}

	var sprite any
	if e.Sprite != "" {
		sprite = e.Sprite
	}

	body, _ := json.Marshal(map[string]any{
		"id":      e.ID,
		"name":    e.Name,
		"sprites": map[string]any{"front_default": sprite, "back_default": nil},
		"types":   types,
	})
	return string(body)
}

// RequestCount returns the number of requests served.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// RequestsFor returns how many requests hit path.
func (m *MockCatalog) RequestsFor(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestsByURL[path]
}

// LastIndexURL returns the request URI of the most recent index request.
func (m *MockCatalog) LastIndexURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastIndexURL
}

// LastHeader returns the headers of the most recent request.
func (m *MockCatalog) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// NewJSONResponse creates a 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type":  "application/json; charset=utf-8",
			"Cache-Control": "public, max-age=86400, s-maxage=86400",
		},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewNotFoundResponse creates a 404 response with PokeAPI's plain body.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       "Not Found",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html>maintenance</html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}

// NewConditionalHandler answers 304 when If-None-Match equals etag.
func NewConditionalHandler(etag, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=600")
		if strings.TrimSpace(r.Header.Get("If-None-Match")) == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func detailPath(id int) string {
	return fmt.Sprintf("/api/v2/pokemon/%d/", id)
}
