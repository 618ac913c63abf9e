package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"habitHiveAPI/handlers"
	"habitHiveAPI/middleware"
	"habitHiveAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool            *pgxpool.Pool
	userService       *services.UserService
	catalogService    *services.CatalogService
	habitService      *services.HabitService
	completionService *services.CompletionService
	progressService   *services.ProgressService
	communityService  *services.CommunityService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	userService = services.NewUserService(dbPool)
	catalogService = services.NewCatalogService(dbPool)
	habitService = services.NewHabitService(dbPool)
	completionService = services.NewCompletionService(dbPool)
	progressService = services.NewProgressService(dbPool, completionService)
	communityService = services.NewCommunityService(dbPool)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	catalogHandler := handlers.NewCatalogHandler(catalogService)
	habitHandler := handlers.NewHabitHandler(habitService, completionService)
	progressHandler := handlers.NewProgressHandler(progressService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "habitHive-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/catalog", catalogHandler.GetCatalog).Methods("GET")
	protected.HandleFunc("/catalog/{categoryId}", catalogHandler.GetCategory).Methods("GET")

	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits", habitHandler.GetHabits).Methods("GET")
	protected.HandleFunc("/habits/{habitId}", habitHandler.GetHabit).Methods("GET")
	protected.HandleFunc("/habits/{habitId}", habitHandler.DeactivateHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{habitId}/completions", habitHandler.RecordCompletion).Methods("POST")
	protected.HandleFunc("/habits/{habitId}/completions", habitHandler.UndoCompletion).Methods("DELETE")

	protected.HandleFunc("/progress/weekly", progressHandler.GetWeeklyTracker).Methods("GET")
	protected.HandleFunc("/progress/habits/{habitId}", progressHandler.GetHabitProgress).Methods("GET")

	protected.HandleFunc("/communities", communityHandler.CreateCommunity).Methods("POST")
	protected.HandleFunc("/communities", communityHandler.GetCommunities).Methods("GET")
	protected.HandleFunc("/communities/join", communityHandler.JoinCommunity).Methods("POST")
	protected.HandleFunc("/communities/{communityId}/members", communityHandler.GetCommunityMembers).Methods("GET")
	protected.HandleFunc("/communities/{communityId}/members/{memberUserId}", communityHandler.ReviewMembership).Methods("PUT")
	protected.HandleFunc("/communities/{communityId}/invite-qr", communityHandler.GetInviteQr).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
