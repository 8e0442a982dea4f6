package main

import (
	"context"
	"log"

	"cravesmart-backend/config"
	"cravesmart-backend/handlers"
	"cravesmart-backend/repository"
	"cravesmart-backend/service"
	"cravesmart-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	config.LoadDotEnv("../../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize repositories
	var accountStore repository.AccountStore
	switch cfg.AccountBackend {
	case config.AccountBackendPostgres:
		db, err := initPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize Postgres:", err)
		}
		defer db.Close()
		accountStore = repository.NewAccountRepository(db)
	default:
		accountStore = repository.NewDocumentAccountRepository(fileStorage)
		log.Printf("Accounts stored in document %q", repository.AccountsKey)
	}
	themeRepo := repository.NewThemeRepository(fileStorage)

	// Initialize Gemini gateway
	generator, closeGenerator, err := initGenerator(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}
	defer closeGenerator()

	// Initialize services
	accountService := service.NewAccountService(
		service.AccountWithStore(accountStore),
	)

	analysisOpts := []service.AnalysisServiceOption{
		service.AnalysisWithGenerator(generator),
	}
	if cfg.ArchiveMealPhotos {
		analysisOpts = append(analysisOpts, service.AnalysisWithImageArchive(fileStorage))
	}
	analysisService := service.NewAnalysisService(analysisOpts...)

	sessions := service.NewSessionStore(cfg.SessionTTL)
	tokens := service.NewTokenIssuer(cfg.JWTSecret)

	r := handlers.NewRouter(handlers.RouterDeps{
		AccountService:  accountService,
		AnalysisService: analysisService,
		Themes:          themeRepo,
		Sessions:        sessions,
		Tokens:          tokens,
		MaxImageSize:    cfg.MaxImageSize,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGenerator(cfg *config.Config) (service.ContentGenerator, func(), error) {
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	if cfg.GeminiTransport == config.GeminiTransportREST {
		log.Printf("Gemini REST gateway using model %s", cfg.GeminiModel)
		return service.NewGeminiRESTGateway(cfg.GeminiAPIKey, cfg.GeminiModel), func() {}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Gemini client initialized with model %s", cfg.GeminiModel)
	return service.NewGeminiGateway(client, cfg.GeminiModel), func() { client.Close() }, nil
}
