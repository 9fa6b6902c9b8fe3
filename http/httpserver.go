package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/schein/conf"
	"github.com/programme-lv/schein/httpjson"
	"github.com/programme-lv/schein/logger"
)

// RouteRegisterer is implemented by the domain handlers.
type RouteRegisterer interface {
	RegisterRoutes(r chi.Router)
}

type HttpServer struct {
	router *chi.Mux
	stats  *statsLogger
	conf   conf.ServerConf
}

func NewHttpServer(cfg conf.ServerConf, handlers ...RouteRegisterer) *HttpServer {
	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("schein", httplog.Options{
		JSON:             cfg.Env == "prod",
		LogLevel:         logger.ParseLevel(cfg.LogLevel),
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Env,
		},
		QuietDownRoutes: []string{"/healthz"},
		QuietDownPeriod: 10 * time.Second,
	})

	stats := newStatsLogger(httpLogger.Logger, 30*time.Second)

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(httpLogger))
	router.Use(contextLogger)
	router.Use(middleware.Recoverer)
	router.Use(stats.middleware)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	})
	router.Use(corsMiddleware.Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteSuccessJson(w, map[string]string{"status": "ok"})
	})
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return &HttpServer{router: router, stats: stats, conf: cfg}
}

// contextLogger makes the request scoped httplog entry available through
// logger.FromContext.
func contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithLogger(r.Context(), httplog.LogEntry(r.Context()))
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HttpServer) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HttpServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.stats.run(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", s.conf.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
