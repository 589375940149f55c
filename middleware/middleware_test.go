package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/VaDeloitte/test-project-sub002/common/graceful"
	"github.com/VaDeloitte/test-project-sub002/common/helper"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
	"github.com/VaDeloitte/test-project-sub002/monitor"
)

func newEngine(mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		gmw.SetLogger(c, logger.Logger)
		c.Next()
	})
	engine.Use(mws...)
	return engine
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRequestId(t *testing.T) {
	engine := newEngine(RequestId())
	var fromCtx, fromGin string
	engine.GET("/", func(c *gin.Context) {
		fromGin = c.GetString(helper.RequestIdKey)
		fromCtx = helper.GetRequestID(c.Request.Context())
	})

	w := serve(engine, http.MethodGet, "/")
	require.NotEmpty(t, fromGin)
	require.Equal(t, fromGin, fromCtx)
	require.Equal(t, fromGin, w.Header().Get(helper.RequestIdKey))
}

func TestRelayPanicRecover(t *testing.T) {
	engine := newEngine(RelayPanicRecover())
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })
	engine.GET("/abort", func(c *gin.Context) { panic(http.ErrAbortHandler) })
	engine.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := serve(engine, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "boom")

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(engine, http.MethodGet, "/abort")
	})
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(engine, http.MethodGet, "/late")
	})
}

func TestInMemoryRateLimiter(t *testing.T) {
	t.Parallel()

	l := newInMemoryRateLimiter(time.Minute)
	for range 3 {
		require.True(t, l.Request("ip", 3, 60))
	}
	require.False(t, l.Request("ip", 3, 60))
	require.True(t, l.Request("other-ip", 3, 60))

	// a zero length window always admits
	require.True(t, l.Request("fast", 1, 0))
	require.True(t, l.Request("fast", 1, 0))
}

func TestInMemoryRateLimiterCountsEveryHit(t *testing.T) {
	t.Parallel()

	l := newInMemoryRateLimiter(time.Minute)
	var admitted atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Request("burst", 10, 60) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 10, admitted.Load())

	expiring := newInMemoryRateLimiter(50 * time.Millisecond)
	require.True(t, expiring.Request("ip", 1, 60))
	time.Sleep(100 * time.Millisecond)
	require.True(t, expiring.Request("ip", 1, 60))
	require.False(t, expiring.Request("ip", 1, 60))
}

func TestGlobalChatRateLimit(t *testing.T) {
	before := testutil.ToFloat64(monitor.RateLimited.WithLabelValues("TEST"))

	engine := newEngine(rateLimitFactory(2, 60, "TEST"))
	engine.POST("/api/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/chat").Code)
	require.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/chat").Code)
	w := serve(engine, http.MethodPost, "/api/chat")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, before+1, testutil.ToFloat64(monitor.RateLimited.WithLabelValues("TEST")))

	unlimited := newEngine(rateLimitFactory(0, 60, "OFF"))
	unlimited.POST("/api/chat", func(c *gin.Context) { c.Status(http.StatusOK) })
	for range 5 {
		require.Equal(t, http.StatusOK, serve(unlimited, http.MethodPost, "/api/chat").Code)
	}
}

func TestGracefulTracker(t *testing.T) {
	engine := newEngine(GracefulTracker())
	var during int64
	engine.GET("/", func(c *gin.Context) {
		during = graceful.InFlight()
		c.Status(http.StatusOK)
	})

	before := graceful.InFlight()
	require.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/").Code)
	require.Equal(t, before+1, during)
	require.Equal(t, before, graceful.InFlight())
}

func TestPrometheusMetrics(t *testing.T) {
	engine := newEngine(PrometheusMetrics())
	engine.GET("/api/status", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := monitor.HTTPRequests.WithLabelValues("/api/status", http.MethodGet, "418")
	before := testutil.ToFloat64(counter)
	serve(engine, http.MethodGet, "/api/status")
	require.Equal(t, before+1, testutil.ToFloat64(counter))

	unmatched := monitor.HTTPRequests.WithLabelValues("unmatched", http.MethodGet, "404")
	before = testutil.ToFloat64(unmatched)
	serve(engine, http.MethodGet, "/nope")
	require.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(CORS())
	engine.POST("/api/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	engine.ServeHTTP(w, req)

	require.Less(t, w.Code, 300)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
