package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"transmittal/internal/auth"
	"transmittal/internal/config"
	"transmittal/internal/repository/postgres"
	"transmittal/internal/seed"
	"transmittal/internal/service/numbering"
	"transmittal/internal/service/records"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed records")
	clearData := flag.Bool("clear-data", false, "Clear the seed user's records (keep schema)")
	email := flag.String("email", "test@example.com", "Seed user email")
	password := flag.String("password", "password123", "Seed user password (only used when the user is created)")
	fullName := flag.String("name", "Juan Dela Cruz", "Seed user full name")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := config.NewLogger(cfg.Environment, os.Stdout)

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if cfg.SupabaseKey == "" {
		log.Fatalf("SUPABASE_KEY (service role) is required to create the seed user")
	}
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
	userID, err := admin.EnsureUser(ctx, *email, *password, *fullName)
	if err != nil {
		log.Fatalf("Failed to ensure seed user: %v", err)
	}
	log.Printf("👤 Seed user %s (ID: %s)", *email, userID)

	log.Println("🧹 Clearing existing records of the seed user...")
	if err := postgres.ClearUserData(ctx, pool, tables, userID); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	txManager := postgres.NewTransactionManager(pool, logger)

	seeder := seed.NewSeeder(
		records.NewProfileService(postgres.NewProfileRepository(repoConfig), logger),
		records.NewCompanyService(postgres.NewCompanyRepository(repoConfig), logger),
		records.NewTemplateService(postgres.NewTemplateRepository(repoConfig), logger),
		records.NewTransmittalService(postgres.NewTransmittalRepository(repoConfig), txManager, logger),
		numbering.NewAllocator(postgres.NewSequenceRepository(repoConfig), logger),
		logger,
	)

	summary, err := seeder.Run(ctx, seed.User{ID: userID, Email: *email, FullName: *fullName})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("🎉 Seeding complete! company=%s template=%s transmittals=%d",
		summary.CompanyID, summary.TemplateID, summary.Transmittals)
}
