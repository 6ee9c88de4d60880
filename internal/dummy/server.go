package dummy

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultPort         = 3600
	DefaultGeneralLimit = 200
	DefaultAPILimit     = 60
)

type ServerConfig struct {
	Port         int
	GeneralLimit int
	APILimit     int
	Window       time.Duration

	// Secret verifies bearer tokens when set.
	Secret string

	Logger *zap.Logger
	Now    func() time.Time
}

func (c *ServerConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.GeneralLimit <= 0 {
		c.GeneralLimit = DefaultGeneralLimit
	}
	if c.APILimit <= 0 {
		c.APILimit = DefaultAPILimit
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Server is a local stand-in for a rate-limited backend.
type Server struct {
	cfg     ServerConfig
	limiter *Limiter
	router  *mux.Router

	registry      *prometheus.Registry
	requestTotal  *prometheus.CounterVec
	rateLimitHits *prometheus.CounterVec
}

func NewServer(cfg ServerConfig) *Server {
	cfg.setDefaults()

	s := &Server{
		cfg:      cfg,
		limiter:  NewLimiter(cfg.Window, cfg.Now),
		router:   mux.NewRouter(),
		registry: prometheus.NewRegistry(),
	}
	s.initMetrics()
	s.routes()
	return s
}

func (s *Server) initMetrics() {
	s.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ratecheck",
		Subsystem: "dummy",
		Name:      "http_requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"route", "status"})

	s.rateLimitHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ratecheck",
		Subsystem: "dummy",
		Name:      "rate_limit_hits_total",
		Help:      "Number of rate-limited responses",
	}, []string{"class"})

	buckets := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "ratecheck",
		Subsystem: "dummy",
		Name:      "limiter_buckets",
		Help:      "Live fixed-window buckets, one per limit class and client",
	}, func() float64 { return float64(s.limiter.Len()) })

	s.registry.MustRegister(s.requestTotal, s.rateLimitHits, buckets)
}

func (s *Server) routes() {
	s.router.Use(s.accessLog)

	// Not rate limited
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	limited := s.router.NewRoute().Subrouter()
	limited.Use(s.rateLimit)
	limited.HandleFunc("/demo", s.handleDemo).Methods(http.MethodGet)
	limited.HandleFunc("/api/auth/me", s.handleMe).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the configured port in the background.
func Start(cfg ServerConfig) (*http.Server, error) {
	s := NewServer(cfg)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	fmt.Printf("👻 Dummy Server running on http://localhost%s\n", addr)
	fmt.Printf("   Endpoints: /health, /demo (%d req/%s), /api/auth/me (%d req/%s), /metrics\n",
		s.cfg.GeneralLimit, s.cfg.Window, s.cfg.APILimit, s.cfg.Window)

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.cfg.Logger.Error("dummy server failed", zap.Error(err))
		}
	}()
	return server, nil
}

// limitFor returns the limit class and its cap for a path.
func (s *Server) limitFor(path string) (string, int) {
	if strings.HasPrefix(path, "/api") {
		return "api", s.cfg.APILimit
	}
	return "general", s.cfg.GeneralLimit
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class, limit := s.limitFor(r.URL.Path)
		d := s.limiter.Allow(class+"|"+clientIP(r), limit)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			retry := int(d.Reset.Sub(s.cfg.Now()).Seconds() + 0.5)
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.rateLimitHits.WithLabelValues(class).Inc()
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": fmt.Sprintf("Rate limit exceeded. Max %d requests per minute.", limit),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.requestTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

		s.cfg.Logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("ip", clientIP(r)),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from the demo endpoint"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	claims, err := ParseToken(token, s.cfg.Secret)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"name":    claims.Name,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
