// Package server wires the library core into an HTTP API. The browser UI
// and the rest of the world talk to CourseWatcher exclusively through the
// routes registered here.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/serhiishtokal/CourseWatcher/internal/auth"
	"github.com/serhiishtokal/CourseWatcher/internal/config"
	"github.com/serhiishtokal/CourseWatcher/internal/library"
	"github.com/serhiishtokal/CourseWatcher/internal/log"
	"github.com/serhiishtokal/CourseWatcher/internal/media"
	"github.com/serhiishtokal/CourseWatcher/internal/metrics"
	"github.com/serhiishtokal/CourseWatcher/internal/scanner"
)

// Server owns the HTTP listener and the background rescan machinery.
type Server struct {
	cfg     config.Config
	library *library.Service
	scanner *scanner.Scanner
	gate    *auth.Gate
	http    *http.Server
	logger  zerolog.Logger

	cancelBackground context.CancelFunc
	background       sync.WaitGroup
	scanMu           sync.Mutex
}

// New assembles the router. Dependencies are constructed by the caller and
// passed in; nothing here reaches for globals.
func New(cfg config.Config, svc *library.Service, sc *scanner.Scanner, gate *auth.Gate) *Server {
	s := &Server{
		cfg:     cfg,
		library: svc,
		scanner: sc,
		gate:    gate,
		logger:  log.WithComponent("server"),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Post("/api/logout", s.handleLogout)
		r.Post("/api/scan", s.handleScan)
		r.Get("/api/modules", s.handleModules)
		r.Get("/api/search", s.handleSearch)
		r.Get("/api/stats", s.handleStats)

		r.Route("/api/videos/{id}", func(r chi.Router) {
			r.Get("/", s.handleVideo)
			r.Get("/adjacent", s.handleAdjacent)
			r.Get("/progress", s.handleProgress)
			r.Post("/progress", s.handleRecordPosition)
			r.Post("/status", s.handleSetStatus)
			r.Get("/notes", s.handleGetNotes)
			r.Put("/notes", s.handleSaveNotes)
			r.Delete("/notes", s.handleDeleteNotes)
			r.Get("/stream", s.handleStream)
		})
	})

	s.http = &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the initial scan, launches the background rescan triggers and
// serves until Close.
func (s *Server) Start() error {
	if _, err := s.runScan(context.Background()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelBackground = cancel

	if s.cfg.ScanIntervalMinutes > 0 {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.runTicker(ctx)
		}()
	}
	if s.cfg.Watch {
		watcher := scanner.NewWatcher(s.cfg.Root, s.cfg.DataDirName, func() {
			if _, err := s.runScan(context.Background()); err != nil {
				s.logger.Error().Err(err).Msg("triggered rescan failed")
			}
		})
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("filesystem watcher stopped")
			}
		}()
	}

	s.logger.Info().Str("addr", s.cfg.Listen).Str("root", s.cfg.Root).Msg("listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close stops the background rescans and drains the listener.
func (s *Server) Close() error {
	if s.cancelBackground != nil {
		s.cancelBackground()
	}
	s.background.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) runTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.cfg.ScanIntervalMinutes) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := s.runScan(ctx); err != nil {
				s.logger.Error().Err(err).Msg("periodic rescan failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// runScan serializes scans: the ticker, the watcher and the API can all
// ask for one and the store has a single writer.
func (s *Server) runScan(ctx context.Context) (scanner.Result, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	result, err := s.scanner.Scan(ctx, s.cfg.Root)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return result, err
	}
	metrics.ScansTotal.WithLabelValues("ok").Inc()
	metrics.ScanVideosAdded.Add(float64(result.Added))
	s.updateStatusGauges(ctx)
	return result, nil
}

func (s *Server) updateStatusGauges(ctx context.Context) {
	stats, err := s.library.LibraryStats(ctx)
	if err != nil {
		return
	}
	metrics.VideosByStatus.WithLabelValues(string(media.StatusUnwatched)).Set(float64(stats.Unwatched))
	metrics.VideosByStatus.WithLabelValues(string(media.StatusInProgress)).Set(float64(stats.InProgress))
	metrics.VideosByStatus.WithLabelValues(string(media.StatusCompleted)).Set(float64(stats.Completed))
}
