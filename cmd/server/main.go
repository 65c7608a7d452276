package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/config"
	"github.com/Dias221467/World_Chronicle/internal/database"
	"github.com/Dias221467/World_Chronicle/internal/handlers"
	"github.com/Dias221467/World_Chronicle/internal/jobs"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	cron "github.com/Dias221467/World_Chronicle/internal/scheduler"
	"github.com/Dias221467/World_Chronicle/internal/services"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
	"github.com/Dias221467/World_Chronicle/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// The single-table store backing the domain repositories
	kv := store.NewMongoStore(db)
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := kv.EnsureIndexes(indexCtx, cfg.StoreTable); err != nil {
		cancel()
		log.Fatalf("Store index error: %v", err)
	}
	cancel()

	// Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	characterRepo := repository.NewCharacterRepository(kv, cfg.StoreTable)
	worldRepo := repository.NewWorldRepository(kv, cfg.StoreTable)
	affiliationRepo := repository.NewAffiliationRepository(kv, cfg.StoreTable)
	activityRepo := repository.NewActivityRepository(kv, cfg.StoreTable)

	// Initialize Services
	userService := services.NewUserService(userRepo, characterRepo)
	characterService := services.NewCharacterService(characterRepo)
	worldService := services.NewWorldService(worldRepo, affiliationRepo, characterRepo)
	activityService := services.NewActivityService(activityRepo, affiliationRepo)

	// Initialize Handlers
	userHandler := handlers.NewUserHandler(userService, cfg)
	characterHandler := handlers.NewCharacterHandler(characterService)
	worldHandler := handlers.NewWorldHandler(worldService)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Register User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes (only authenticated users can access)
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")

	// Character routes
	protectedCharacterRoutes := router.PathPrefix("/characters").Subrouter()
	protectedCharacterRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedCharacterRoutes.HandleFunc("", characterHandler.CreateCharacterHandler).Methods("POST")
	protectedCharacterRoutes.HandleFunc("", characterHandler.GetMyCharactersHandler).Methods("GET")
	protectedCharacterRoutes.HandleFunc("/{id}", characterHandler.GetCharacterHandler).Methods("GET")
	protectedCharacterRoutes.HandleFunc("/{id}", characterHandler.UpdateCharacterHandler).Methods("PATCH")

	// World and membership routes
	protectedWorldRoutes := router.PathPrefix("/worlds").Subrouter()
	protectedWorldRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedWorldRoutes.HandleFunc("", worldHandler.CreateWorldHandler).Methods("POST")
	protectedWorldRoutes.HandleFunc("", worldHandler.GetMyWorldsHandler).Methods("GET")
	protectedWorldRoutes.HandleFunc("/{id}", worldHandler.GetWorldHandler).Methods("GET")
	protectedWorldRoutes.HandleFunc("/{id}/join", worldHandler.RequestJoinHandler).Methods("POST")
	protectedWorldRoutes.HandleFunc("/{id}/timeline", activityHandler.GetWorldTimelineHandler).Methods("GET")

	// Affiliation routes
	protectedAffiliationRoutes := router.PathPrefix("/affiliations").Subrouter()
	protectedAffiliationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAffiliationRoutes.HandleFunc("/{id}/approve", worldHandler.ApproveAffiliationHandler).Methods("POST")

	// Activity routes
	protectedActivityRoutes := router.PathPrefix("/activities").Subrouter()
	protectedActivityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedActivityRoutes.HandleFunc("", activityHandler.PostActivityHandler).Methods("POST")
	protectedActivityRoutes.HandleFunc("/{id}/sign", activityHandler.SignActivityHandler).Methods("POST")
	protectedActivityRoutes.HandleFunc("/{id}/reject", activityHandler.RejectActivityHandler).Methods("POST")
	protectedActivityRoutes.HandleFunc("/{id}/archive", activityHandler.ArchiveActivityHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background sweep of expired pending activities
	if cfg.ArchiveSweep > 0 {
		sweeper := jobs.NewArchiveSweeper(activityService)
		cron.StartArchiveCronJobs(sweeper, cfg.ArchiveSweep)
		logger.Log.WithField("interval", cfg.ArchiveSweep.String()).Info("Archive sweeper started")
	}

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
