package overpass

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-kit/log"
	"github.com/pdok/asciimap/httpcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `{
  "version": 0.6,
  "generator": "Overpass API 0.7.62",
  "osm3s": {"timestamp_osm_base": "2024-01-01T00:00:00Z"},
  "elements": [
    {"type": "node", "id": 1, "lat": 45.0, "lon": 4.0},
    {"type": "node", "id": 2, "lat": 45.01, "lon": 4.01},
    {"type": "way", "id": 10, "nodes": [1, 2], "tags": {"highway": "motorway"}}
  ]
}`

func newTestServer(t *testing.T, status int, body string, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "asciimap/test", r.Header.Get("User-Agent"))
		assert.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), "way[highway=motorway](45,4,45.01,4.01);")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testQuery() Query {
	return Query{Box: testBox, Types: []string{"motorway"}, Timeout: DefaultTimeout}
}

func TestClient_Fetch(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, http.StatusOK, okResponse, &requests)
	var logs bytes.Buffer
	c := NewClient(srv.URL, "asciimap/test", httpcache.New(4), log.NewLogfmtLogger(&logs))

	for i := 0; i < 2; i++ {
		body, err := c.Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		assert.JSONEq(t, okResponse, string(body))
	}
	assert.Equal(t, int32(1), requests.Load())
	assert.Contains(t, logs.String(), `msg="fetched vector data"`)
}

func TestClient_Fetch_errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "too many requests",
			status:  http.StatusTooManyRequests,
			body:    "rate limited",
			wantErr: ErrStatus,
		},
		{
			name:    "runtime error",
			status:  http.StatusOK,
			body:    `{"version": 0.6, "elements": [], "remark": "runtime error: Query timed out in \"query\" at line 1 after 26 seconds."}`,
			wantErr: ErrRemark,
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<?xml version="1.0"?>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			srv := newTestServer(t, tt.status, tt.body, &requests)
			cache := httpcache.New(4)
			c := NewClient(srv.URL, "asciimap/test", cache, nil)

			_, err := c.Fetch(context.Background(), testQuery())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 0, cache.Len())
		})
	}
}

func TestClient_Fetch_remarkWithoutError(t *testing.T) {
	var requests atomic.Int32
	srv := newTestServer(t, http.StatusOK, `{"version": 0.6, "elements": [], "remark": "runtime remark: nothing to see"}`, &requests)
	var logs bytes.Buffer
	c := NewClient(srv.URL, "asciimap/test", nil, log.NewLogfmtLogger(&logs))

	_, err := c.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "runtime remark")
}

func TestClient_Fetch_cancelled(t *testing.T) {
	c := &Client{URL: "http://127.0.0.1:0", UserAgent: "asciimap/test"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, testQuery())
	assert.ErrorIs(t, err, context.Canceled)
}
