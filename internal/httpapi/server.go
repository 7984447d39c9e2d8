package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"fswatcher/internal/journal"
	"fswatcher/internal/util/logger/sl"
	"fswatcher/internal/watcher"
)

// Server exposes the daemon's status surface: watch state, counters,
// the ignore registry, the change journal and a websocket stream of
// live notifications.
type Server struct {
	addr    string
	engine  *watcher.MultiWatcher
	journal *journal.Journal
	log     *slog.Logger
	router  *chi.Mux
}

func New(addr string, engine *watcher.MultiWatcher, j *journal.Journal, log *slog.Logger) *Server {
	s := &Server{
		addr:    addr,
		engine:  engine,
		journal: j,
		log:     log,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(50), 100)))

	r.Get("/status", s.handleStatus)
	r.Get("/watches", s.handleWatches)
	r.Get("/stats", s.handleStats)
	r.Get("/journal", s.handleJournal)
	r.Get("/ignores", s.handleIgnoresList)
	r.Post("/ignores", s.handleIgnoresAdd)
	r.Delete("/ignores", s.handleIgnoresClear)
	r.Get("/stream", s.handleStream)

	return r
}

// Router returns the underlying router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http shutdown", sl.Err(err))
		}
	}()

	s.log.Info("http api listening", slog.String("addr", s.addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
