package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"transmittal/internal/auth"
	"transmittal/internal/capabilities"
	"transmittal/internal/config"
	"transmittal/internal/handler"
	"transmittal/internal/middleware"
	"transmittal/internal/repository/postgres"
	"transmittal/internal/service/categorize"
	"transmittal/internal/service/drive"
	"transmittal/internal/service/numbering"
	"transmittal/internal/service/records"
)

const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, logOut)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	txManager := postgres.NewTransactionManager(pool, logger)

	// Model capabilities decide what deep mode may send inline
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	model, err := capabilityRegistry.GetModelCapabilities("gemini", cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Unsupported GEMINI_MODEL: %v", err)
	}
	prompts, err := categorize.LoadPromptConfig()
	if err != nil {
		log.Fatalf("Failed to load categorization prompts: %v", err)
	}

	// Services
	numbers := numbering.NewAllocator(postgres.NewSequenceRepository(repoConfig), logger)
	profileService := records.NewProfileService(postgres.NewProfileRepository(repoConfig), logger)
	transmittalService := records.NewTransmittalService(postgres.NewTransmittalRepository(repoConfig), txManager, logger)
	templateService := records.NewTemplateService(postgres.NewTemplateRepository(repoConfig), logger)
	companyService := records.NewCompanyService(postgres.NewCompanyRepository(repoConfig), logger)
	categorizer := categorize.NewService(categorize.Config{
		NewGenerator:  categorize.NewGeminiFactory(model.ID, prompts),
		NewDownloader: drive.NewDownloaderFactory(),
		Prompts:       prompts,
		Model:         model,
		Logger:        logger,
	})

	// Handlers
	profileHandler := handler.NewProfileHandler(profileService, logger)
	numberHandler := handler.NewNumberHandler(numbers, profileService, logger)
	aiHandler := handler.NewAIHandler(
		drive.NewEnumeratorFactory(cfg.DriveMaxFolders, logger),
		categorizer,
		handler.DefaultKeys{Gemini: cfg.GeminiAPIKey, Google: cfg.GoogleAPIKey},
		logger,
	)
	renderHandler := handler.NewRenderHandler(logger)
	transmittalHandler := handler.NewTransmittalHandler(transmittalService, logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)
	companyHandler := handler.NewCompanyHandler(companyService, logger)

	logger.Info("services initialized", "gemini_model", model.ID, "drive_max_folders", cfg.DriveMaxFolders)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	// Profile and numbering
	mux.HandleFunc("GET /api/users/me/profile", profileHandler.GetProfile)
	mux.HandleFunc("PUT /api/users/me/profile", profileHandler.UpdateProfile)
	mux.HandleFunc("POST /api/transmittal-numbers", numberHandler.Allocate)
	mux.HandleFunc("GET /api/transmittal-numbers/current", numberHandler.Current)

	// Drive and AI
	mux.HandleFunc("POST /api/drive/scan", aiHandler.Scan)
	mux.HandleFunc("POST /api/categorize", aiHandler.Categorize)

	// Rendering of unsaved forms
	mux.HandleFunc("POST /api/render/pdf", renderHandler.PDF)
	mux.HandleFunc("POST /api/render/csv", renderHandler.CSV)

	// Cloud records
	mux.HandleFunc("GET /api/transmittals", transmittalHandler.List)
	mux.HandleFunc("POST /api/transmittals", transmittalHandler.Create)
	mux.HandleFunc("GET /api/transmittals/stats", transmittalHandler.Stats) // Must come before {id} route
	mux.HandleFunc("POST /api/transmittals/export", transmittalHandler.Export)
	mux.HandleFunc("GET /api/transmittals/{id}", transmittalHandler.Get)
	mux.HandleFunc("PATCH /api/transmittals/{id}", transmittalHandler.Update)
	mux.HandleFunc("DELETE /api/transmittals/{id}", transmittalHandler.Delete)
	mux.HandleFunc("PATCH /api/transmittals/{id}/status", transmittalHandler.UpdateStatus)
	mux.HandleFunc("GET /api/transmittals/{id}/history", transmittalHandler.History)
	mux.HandleFunc("GET /api/transmittals/{id}/pdf", transmittalHandler.PDF)
	mux.HandleFunc("GET /api/transmittals/{id}/csv", transmittalHandler.CSV)

	// Templates and companies
	mux.HandleFunc("GET /api/templates", templateHandler.List)
	mux.HandleFunc("POST /api/templates", templateHandler.Create)
	mux.HandleFunc("DELETE /api/templates/{id}", templateHandler.Delete)
	mux.HandleFunc("GET /api/companies", companyHandler.List)
	mux.HandleFunc("POST /api/companies", companyHandler.Create)
	mux.HandleFunc("DELETE /api/companies/{id}", companyHandler.Delete)

	// Build middleware chain
	var h http.Handler = mux

	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", handler.GeminiKeyHeader, handler.GoogleKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // deep categorization downloads and batches
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
