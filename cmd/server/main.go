package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maryakemi70/HY4RES-WP2/internal/config"
	"github.com/maryakemi70/HY4RES-WP2/internal/logger"
	"github.com/maryakemi70/HY4RES-WP2/internal/metrics"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/service"
	"github.com/maryakemi70/HY4RES-WP2/internal/store"
	"github.com/maryakemi70/HY4RES-WP2/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	addr := flag.String("addr", "", "listen address (overrides listen_addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	metrics.Init()

	svc, st, err := service.Load(cfg, log)
	if err != nil {
		log.Error("failed to load data", "err", err)
		os.Exit(1)
	}

	tr := svc.Coverage()
	log.Info("data loaded",
		"from", tr.Start.Format(model.DateLayout),
		"to", tr.End.Format(model.DateLayout),
		"indicators", len(svc.Indicators()))
	if gr, ok := st.GlobalTimeRange(); ok {
		log.Info("input series",
			"count", len(st.Sources()),
			"from", gr.Start.Format(model.DateLayout),
			"to", gr.End.Format(model.DateLayout))
	}

	hub := ws.NewHub(log)
	handler := ws.NewHandler(hub, svc, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newMux(handler, hub, st, *frontendDir, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		handler.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("starting server", "addr", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// newMux routes /ws to the query handler, /health and /metrics, the raw
// series API when st is set, and serves the frontend build when the
// directory exists.
func newMux(handler http.Handler, hub *ws.Hub, st *store.Store, frontendDir string, log *slog.Logger) *http.ServeMux {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok clients=%d\n", hub.ClientCount())
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/ws", handler)

	if st != nil {
		api := &seriesAPI{st: st, log: log}
		mux.HandleFunc("GET /api/sources", api.sources)
		mux.HandleFunc("GET /api/series/{quantity}", api.points)
	}

	if frontendDir != "" {
		if _, err := os.Stat(frontendDir); err == nil {
			log.Info("serving frontend", "dir", frontendDir)
			mux.Handle("/", http.FileServer(http.Dir(frontendDir)))
		}
	}
	return mux
}
