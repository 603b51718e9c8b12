package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jacobtread/obs-mod-toys/internal/config"
	"github.com/jacobtread/obs-mod-toys/internal/coordinator"
	"github.com/jacobtread/obs-mod-toys/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle := coordinator.Start(ctx, coordinator.Config{
		InboxCapacity:   cfg.InboxCapacity,
		BroadcastBuffer: cfg.BroadcastBuffer,
	})
	defer handle.Close()

	server := transport.NewServer(cfg, handle)
	go server.CleanupLoop(ctx)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", server.HandleWebSocket)

	log.Printf("WebSocket server started on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
