package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"homework_status_bot/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type StatsProvider interface {
	Stats() app.Stats
}

func NewRouter(stats StatsProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if stats == nil {
			_, _ = w.Write([]byte(`{"error":"watcher not wired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(stats.Stats())
	})

	return r
}

// Run serves the health endpoints on addr until ctx is done.
func Run(ctx context.Context, addr string, stats StatsProvider, logger *logrus.Entry) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.WithField("addr", lis.Addr().String()).Info("Health server listening")

	srv := &http.Server{Handler: NewRouter(stats), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
