package middlewares_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mw "github.com/5w1tchy/course-library-api/internal/api/middlewares"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) mw.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := mw.Chain(http.HandlerFunc(ok), tag("outer"), nil, tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestHPP_KeepsFirstWhitelistedValue(t *testing.T) {
	var got string
	h := mw.HPP(mw.DefaultHPPOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/authors?pageSize=5&pageSize=50&evil=1&orderBy=name", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "orderBy=name&pageSize=5", got)
}

func TestCors_ExposesPagination(t *testing.T) {
	h := mw.Cors([]string{"http://localhost:5173"})(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodGet, "/api/authors", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Pagination")
}

func TestCors_UnknownOriginGetsNoGrant(t *testing.T) {
	h := mw.Cors([]string{"http://localhost:5173"})(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodGet, "/api/authors", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCompression(t *testing.T) {
	h := mw.Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("course ", 50)))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("course ", 50), string(body))
}

func TestCompression_SkipsHead(t *testing.T) {
	h := mw.Compression(http.HandlerFunc(ok))
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestCompression_LeavesBodylessStatusesAlone(t *testing.T) {
	for _, code := range []int{http.StatusNoContent, http.StatusNotModified} {
		h := mw.Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		req := httptest.NewRequest(http.MethodDelete, "/api/authors/a", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, code, rec.Code)
		assert.Emptyf(t, rec.Header().Get("Content-Encoding"), "status %d", code)
		assert.Zerof(t, rec.Body.Len(), "status %d", code)
	}
}

func TestCompression_ErrorBodyIsCompressed(t *testing.T) {
	h := mw.Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "9")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "not found", string(body))
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := mw.NewMetrics(reg)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/authors/{authorId}", ok).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/authors/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/authors/b", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var series []*dto.Metric
	for _, f := range families {
		if f.GetName() == "course_library_http_requests_total" {
			series = f.GetMetric()
		}
	}
	require.Len(t, series, 1, "both requests share one series")
	assert.Equal(t, float64(2), series[0].GetCounter().GetValue())
	labels := map[string]string{}
	for _, lp := range series[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	assert.Equal(t, "/api/authors/{authorId}", labels["route"])
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRateLimiters_FailOpenWithoutRedis(t *testing.T) {
	rdb := unreachableRedis(t)
	tb := mw.NewRedisTokenBucket(rdb, mw.BucketLimits{
		Read:  mw.Rate{PerSecond: 1, Burst: 1},
		Write: mw.Rate{PerSecond: 1, Burst: 1},
	}, mw.ClientKey("tb"))
	sw := mw.NewRedisSlidingWindow(rdb, mw.WindowLimits{Read: 1, Write: 1, Window: time.Minute}, mw.ClientKey("sw"))

	for _, h := range []http.Handler{tb.Middleware(http.HandlerFunc(ok)), sw.Middleware(http.HandlerFunc(ok))} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/authors", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Policy"))
	}
}

func TestClassOf(t *testing.T) {
	for method, want := range map[string]mw.Class{
		http.MethodGet:     mw.ClassRead,
		http.MethodHead:    mw.ClassRead,
		http.MethodOptions: mw.ClassRead,
		http.MethodPost:    mw.ClassWrite,
		http.MethodPut:     mw.ClassWrite,
		http.MethodPatch:   mw.ClassWrite,
		http.MethodDelete:  mw.ClassWrite,
	} {
		assert.Equal(t, want, mw.ClassOf(httptest.NewRequest(method, "/", nil)), method)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "courselib:rl:sw:read:203.0.113.9", mw.ClientKey("sw")(req))

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "courselib:rl:tb:write:198.51.100.4", mw.ClientKey("tb")(req))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, int64(1), mw.RetryAfter(0))
	assert.Equal(t, int64(1), mw.RetryAfter(200*time.Millisecond))
	assert.Equal(t, int64(2), mw.RetryAfter(1001*time.Millisecond))
	assert.Equal(t, int64(60), mw.RetryAfter(time.Minute))
}
