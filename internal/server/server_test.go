package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestServer() *CalendarServer {
	calc := engine.NewCalculator(fixedClock{time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)})
	return NewCalendarServer("0", calc)
}

func serve(s *CalendarServer, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w.Result()
}

// -----------------------------------------------------------------------------
// Calendar route
// -----------------------------------------------------------------------------

func TestCalendar_ServingContent(t *testing.T) {
	srv := newTestServer()
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(expectedICS)

	resp := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

func TestCalendar_Head(t *testing.T) {
	srv := newTestServer()
	srv.Update([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR"))

	resp := serve(srv, httptest.NewRequest(http.MethodHead, config.RouteCalendar, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestCalendar_Caching(t *testing.T) {
	srv := newTestServer()
	srv.Update([]byte("DATA_VERSION_1"))

	first := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	etag := first.Header.Get(config.HeaderETag)
	lastMod := first.Header.Get(config.HeaderLastModified)
	require.NotEmpty(t, etag, "Server must provide an ETag")
	require.NotEmpty(t, lastMod)

	t.Run("IfNoneMatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
		req.Header.Set(config.HeaderIfNoneMatch, etag)
		resp := serve(srv, req)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Empty(t, body, "Body must be empty on 304 Not Modified")
	})

	t.Run("IfModifiedSince", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
		req.Header.Set(config.HeaderIfModifiedSince, lastMod)
		resp := serve(srv, req)
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("StaleETag", func(t *testing.T) {
		srv.Update([]byte("DATA_VERSION_2"))
		req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
		req.Header.Set(config.HeaderIfNoneMatch, etag)
		resp := serve(srv, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEqual(t, etag, resp.Header.Get(config.HeaderETag))
	})
}

func TestCalendar_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	resp := serve(srv, httptest.NewRequest(http.MethodPost, config.RouteCalendar, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestCalendar_Initializing(t *testing.T) {
	srv := newTestServer()

	resp := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestUnknownRoute(t *testing.T) {
	resp := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	resp := serve(newTestServer(), httptest.NewRequest(http.MethodGet, config.RouteHealth, nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, config.HTTPMsgHealthy, string(body))
}

// -----------------------------------------------------------------------------
// Metrics route
// -----------------------------------------------------------------------------

type metricsBody struct {
	DOB                string                   `json:"dob"`
	Weeks              int                      `json:"weeks"`
	WeeksLived         int                      `json:"weeksLived"`
	WeeksRemaining     int                      `json:"weeksRemaining"`
	CurrentWeekIndex   int                      `json:"currentWeekIndex"`
	IsFutureDob        bool                     `json:"isFutureDob"`
	MilestoneWeeks     map[int]engine.Milestone `json:"milestoneWeeks"`
	DaysToNextBirthday int                      `json:"daysToNextBirthday"`
}

func getMetrics(t *testing.T, srv *CalendarServer, query string) metricsBody {
	t.Helper()
	resp := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteMetrics+query, nil))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var body metricsBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestMetrics_ShareLink(t *testing.T) {
	body := getMetrics(t, newTestServer(), "?dob=1994-06-15&weeks=4160")

	assert.Equal(t, "1994-06-15", body.DOB)
	assert.Equal(t, 4160, body.Weeks)
	assert.Equal(t, 1565, body.WeeksLived)
	assert.Equal(t, 4160-1565, body.WeeksRemaining)
	assert.Equal(t, 1565, body.CurrentWeekIndex)
	assert.Equal(t, config.NextBirthdayName, body.MilestoneWeeks[1565].Name)
}

func TestMetrics_Defaults(t *testing.T) {
	srv := newTestServer()

	body := getMetrics(t, srv, "")
	assert.Equal(t, config.DefaultWeeks, body.Weeks)
	assert.Equal(t, -1, body.CurrentWeekIndex)
	assert.Empty(t, body.MilestoneWeeks)

	body = getMetrics(t, srv, "?dob=2023-02-30&weeks=1")
	assert.Equal(t, "", body.DOB)
	assert.Equal(t, config.MinWeeks, body.Weeks, "weeks is clamped")
	assert.Equal(t, -1, body.CurrentWeekIndex)

	body = getMetrics(t, srv, "?dob=2030-01-01")
	assert.True(t, body.IsFutureDob)
	assert.Equal(t, 0, body.CurrentWeekIndex)
}

func TestMetrics_CustomMilestones(t *testing.T) {
	srv := newTestServer()
	custom := []engine.Milestone{{ID: "1", Name: "Graduation", Kind: engine.KindWeek, Value: engine.IntValue(100)}}
	srv.SetMilestones(custom)
	custom[0].Name = "mutated"

	body := getMetrics(t, srv, "?dob=1994-06-15")
	assert.Equal(t, "Graduation", body.MilestoneWeeks[99].Name)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition exercises concurrent Update and reads. Run with -race.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer()
	handler := srv.Handler()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				srv.SetMilestones([]engine.Milestone{{Name: "x", Kind: engine.KindWeek, Value: engine.IntValue(i%100 + 1)}})
				i++
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			route := config.RouteCalendar
			if r%2 == 0 {
				route = config.RouteMetrics + "?dob=1990-01-01"
			}
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}(r)
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds a real port and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := newTestServer()
	srv.Port = port
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	base := "http://127.0.0.1:" + port

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + config.RouteHealth)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(base + config.RouteCalendar)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(base + config.RouteCalendar)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_PortRequired(t *testing.T) {
	srv := newTestServer()
	srv.Port = ""
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
