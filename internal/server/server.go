// Package server publishes the latest notification pass over HTTP: the ICS
// feed on "/", the JSON view on "/notifications" and metrics on "/metrics".
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/tartampluch/go-reminder/internal/config"
)

// cacheItem stores one rendered document and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

func newCacheItem(data []byte, now time.Time) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: now.UTC().Format(http.TimeFormat),
	}
}

// NotificationServer serves the documents produced by the last pass.
type NotificationServer struct {
	// Both documents are swapped atomically on every pass and read without
	// locks by the handlers.
	calendar      atomic.Pointer[cacheItem]
	notifications atomic.Pointer[cacheItem]

	Port    int
	Metrics http.Handler
}

// New creates a server for port. metrics may be nil, in which case
// /metrics is not routed.
func New(port int, metrics http.Handler) *NotificationServer {
	return &NotificationServer{
		Port:    port,
		Metrics: metrics,
	}
}

// Handler returns the router of the server.
func (s *NotificationServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(config.RouteRoot, s.handleCalendar)
	r.HandleFunc(config.RouteNotifications, s.handleNotifications)
	if s.Metrics != nil {
		r.Handle(config.RouteMetrics, s.Metrics)
	}
	return r
}

// Start runs the HTTP server on localhost and blocks until ctx is cancelled.
func (s *NotificationServer) Start(ctx context.Context) error {
	if s.Port == 0 {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + strconv.Itoa(s.Port),
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

// Update atomically replaces both served documents. Readers see either the
// previous pass or this one, never a mix within one document.
func (s *NotificationServer) Update(ics, notifications []byte) {
	now := time.Now()
	cal := newCacheItem(ics, now)
	s.calendar.Store(cal)
	s.notifications.Store(newCacheItem(notifications, now))

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(ics)+len(notifications),
		config.LogKeyETag, cal.etag,
	)
}

func (s *NotificationServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.calendar.Load(), config.MimeTextCalendar)
}

func (s *NotificationServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.notifications.Load(), config.MimeJSON)
}

// serveCached writes item with conditional GET support.
func serveCached(w http.ResponseWriter, r *http.Request, item *cacheItem, mime string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// No pass has completed yet.
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, mime)
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

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
