package transport

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacobtread/obs-mod-toys/internal/config"
	"github.com/jacobtread/obs-mod-toys/internal/coordinator"
	"github.com/jacobtread/obs-mod-toys/internal/metrics"
	"github.com/jacobtread/obs-mod-toys/internal/middleware"
	"github.com/jacobtread/obs-mod-toys/internal/object"
	"github.com/jacobtread/obs-mod-toys/internal/session"
)

// Server upgrades HTTP requests to WebSocket sessions and hands them to the
// session handlers.
type Server struct {
	upgrader  websocket.Upgrader
	handle    *coordinator.Handle
	validator *object.Validator
	limits    *middleware.Limits
	ipLimiter *middleware.IPRateLimit
	colors    *session.ColorGenerator
}

func NewServer(cfg *config.Config, handle *coordinator.Handle) *Server {
	allowed := cfg.AllowedOrigins

	return &Server{
		upgrader: websocket.Upgrader{
			// CORS: permissive when no origins are configured
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, a := range allowed {
					if origin == strings.TrimSpace(a) {
						return true
					}
				}
				return false
			},
		},
		handle:    handle,
		validator: object.NewValidator(),
		limits:    middleware.NewLimits(cfg.MaxMessageSize, cfg.MessagesPerSecond, cfg.BurstSize),
		ipLimiter: middleware.NewIPRateLimit(time.Duration(cfg.ConnectionIntervalSeconds)*time.Second, cfg.ConnectionBurst),
		colors:    session.NewColorGenerator(),
	}
}

// GetClientIP: extracts the client IP from the request
func GetClientIP(r *http.Request) string {
	// Use RemoteAddr only - cannot be spoofed by client
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx] // Remove port
	}
	return ip
}

// HandleWebSocket: upgrades HTTP to WebSocket and runs the session until the
// connection ends
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	if !s.ipLimiter.Allow(clientIP) {
		log.Printf("Rate limit exceeded for IP: %s", clientIP)
		metrics.ConnectionsRejected.WithLabelValues("rate_limited").Inc()
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error: Failed to upgrade connection - %v", err)
		metrics.ConnectionsRejected.WithLabelValues("upgrade_failed").Inc()
		return
	}

	h := session.New(conn, s.handle.Clone(), s.validator, s.limits, s.colors.NextColor())
	h.Run(r.Context())
}

// CleanupLoop: periodically drops idle per-IP limiters until ctx ends
func (s *Server) CleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ipLimiter.Cleanup()
		}
	}
}
