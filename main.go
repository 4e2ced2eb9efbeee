package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/db"
	"tripdesk/globals"
	"tripdesk/itinerary"
	"tripdesk/preview"
	"tripdesk/ratelim"
	"tripdesk/rdx"
	"tripdesk/routes"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s in %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

func activityRecorder(ctx context.Context) activity.Recorder {
	if db.ActivityCollection == nil {
		return &activity.Memory{}
	}
	m := activity.NewMongo(db.ActivityCollection)
	if err := m.EnsureIndexes(ctx); err != nil {
		log.Printf("[activity] %v", err)
	}
	return m
}

func catalogCache() itinerary.Cache {
	if rdx.Conn == nil {
		return itinerary.NewMemoryCache()
	}
	return rdx.Cache{Client: rdx.Conn}
}

func main() {
	cfg, err := globals.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	base, stop := context.WithCancel(globals.Ctx)
	defer stop()

	if err := db.Init(base, cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("mongo: %v", err)
	}
	if err := rdx.Init(base, cfg.RedisURL, cfg.RedisPassword); err != nil {
		log.Fatalf("redis: %v", err)
	}

	client := apiclient.New(cfg.APIBaseURL, apiclient.WithRateLimit(cfg.APIRPS, int(cfg.APIRPS)+1))

	rateLimiter := ratelim.NewRateLimiter(5, 20, 10*time.Minute)
	defer rateLimiter.Stop()

	hub := toast.NewHub()
	go hub.Run()

	previews := preview.NewStore()
	previews.Expire(cfg.PreviewTTL, time.Minute)
	defer previews.Stop()

	deps := &routes.Deps{
		Client:   client,
		Hub:      hub,
		Previews: previews,
		Recorder: activityRecorder(base),
		Loader: &itinerary.Loader{
			Client: client,
			Cache:  catalogCache(),
			TTL:    cfg.CatalogTTL,
			Limit:  cfg.CatalogLimit,
		},
		Secret:       cfg.JwtSecret,
		DashboardURL: cfg.DashboardURL,
		Debounce:     cfg.Debounce,
		Base:         base,
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, rateLimiter, deps)

	// apply middleware: CORS → security headers → request id → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.DashboardURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(utils.WithRequestID(securityHeaders(corsHandler)))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// hijacked websocket connections are not tracked by Shutdown
	server.RegisterOnShutdown(func() {
		log.Println("Closing live sessions...")
		stop()
		hub.Stop()
	})

	go func() {
		log.Printf("Server listening on %s, backend %s", cfg.Port, cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if err := db.Close(ctx); err != nil {
		log.Printf("[db] close: %v", err)
	}
	if err := rdx.Close(); err != nil {
		log.Printf("[rdx] close: %v", err)
	}
	log.Println("Server stopped cleanly")
}
