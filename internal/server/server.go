package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/store"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// metricsResponse is the JSON body of the metrics route.
type metricsResponse struct {
	DateOfBirth string `json:"dob,omitempty"`
	Weeks       int    `json:"weeks"`
	engine.Metrics
}

// CalendarServer publishes the milestone calendar and the grid metrics on localhost.
type CalendarServer struct {
	// cache is read on every request and replaced on every recompute.
	cache      atomic.Pointer[cacheItem]
	milestones atomic.Pointer[[]engine.Milestone]

	Port string
	Calc *engine.Calculator
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string, calc *engine.Calculator) *CalendarServer {
	return &CalendarServer{
		Port: port,
		Calc: calc,
	}
}

// Handler returns the router serving all routes.
func (s *CalendarServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(requestLogger)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	})

	r.Get(config.RouteCalendar, s.handleCalendarRequest)
	r.Get(config.RouteMetrics, s.handleMetricsRequest)
	r.Get(config.RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
		_, _ = io.WriteString(w, config.HTTPMsgHealthy)
	})
	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// SetMilestones replaces the custom milestones used by the metrics route.
func (s *CalendarServer) SetMilestones(list []engine.Milestone) {
	cp := append([]engine.Milestone(nil), list...)
	s.milestones.Store(&cp)
}

func (s *CalendarServer) customMilestones() []engine.Milestone {
	if p := s.milestones.Load(); p != nil {
		return *p
	}
	return nil
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleMetricsRequest computes the metrics of a share link: ?dob=YYYY-MM-DD&weeks=N.
// A missing or invalid dob yields the empty state rather than an error.
func (s *CalendarServer) handleMetricsRequest(w http.ResponseWriter, r *http.Request) {
	q := store.QueryFromValues(r.URL.Query())
	weeks := q.Weeks
	if weeks == 0 {
		weeks = config.DefaultWeeks
	}

	resp := metricsResponse{
		DateOfBirth: q.DateOfBirth,
		Weeks:       weeks,
		Metrics:     s.Calc.ComputeInput(q.DateOfBirth, weeks, s.customMilestones()),
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// requestLogger logs every request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug(config.MsgRequestServed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyURL, r.URL.Path,
			config.LogKeyStatus, ww.Status(),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
			config.LogKeyRequestID, chimw.GetReqID(r.Context()),
		)
	})
}
