package router

import (
	"context"
	"database/sql"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"viralio/internal/api/v1/handler"
	"viralio/internal/config"
	"viralio/internal/middleware"
	"viralio/internal/repository"
	"viralio/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, error) {
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := " "
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if strings.Contains(dsn, "?") {
				separator = "&"
			} else {
				separator = "?"
			}
		}
		dsn += separator + "sslmode=disable"
	}
	// For non-development environments that use a transaction pooler like pgbouncer,
	// we must use the simple query protocol to avoid issues with server-side prepared statements.
	if cfg.Environment != "development" {
		if !strings.Contains(dsn, "prefer_simple_protocol") {
			separator := "&"
			if !strings.Contains(dsn, "?") {
				separator = "?"
			}
			dsn += separator + "prefer_simple_protocol=true"
		}
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}

	// Ping the database to ensure connection is valid
	if err := db.Ping(); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// Set reasonable connection pool limits
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Initialize S3 client for thumbnail storage
	s3Config, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to load S3 config: %v", err)
	}
	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	})

	// Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Initialize repositories & services & handlers
	profileRepo := repository.NewProfileRepo(db)
	taskRepo := repository.NewTaskRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	competitorRepo := repository.NewCompetitorRepo(db)
	templateRepo := repository.NewTemplateRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	creditsRepo := repository.NewCreditsRepo(db)

	stripeSvc := service.NewStripeService(cfg, profileRepo, paymentRepo, logger)
	subscriptionSvc := service.NewSubscriptionService(profileRepo, paymentRepo, stripeSvc, logger)

	var thumbnailSvc service.Thumbnailer
	if cfg.S3URL != "" {
		thumbnailSvc = service.NewThumbnailService(s3Client, cfg.S3Bucket, cfg.S3URL, logger)
	}
	taskSvc := service.NewTaskService(taskRepo, categoryRepo, subscriptionSvc, thumbnailSvc, logger)
	profileSvc := service.NewProfileService(profileRepo, taskRepo, logger)
	competitorSvc := service.NewCompetitorService(competitorRepo, logger)
	templateSvc := service.NewTemplateService(templateRepo, taskRepo, subscriptionSvc,
		rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	sanitySvc := service.NewSanityService(cfg, templateRepo, taskRepo, logger)
	adminSvc := service.NewAdminService(cfg, profileRepo, logger)

	var aiClient service.ChatCompleter
	if cfg.OpenAIAPIKey != "" {
		aiClient = openai.NewClient(cfg.OpenAIAPIKey)
	}
	aiSvc := service.NewAIService(aiClient, creditsRepo, cfg.OpenAIModel, cfg.AIMonthlyCredits, logger)

	taskHandler := handler.NewTaskHandler(taskSvc, validate)
	profileHandler := handler.NewProfileHandler(profileSvc, validate)
	competitorHandler := handler.NewCompetitorHandler(competitorSvc, validate)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	stripeHandler := handler.NewStripeHandler(stripeSvc, subscriptionSvc, validate)
	aiHandler := handler.NewAIHandler(aiSvc, profileSvc, validate)
	adminHandler := handler.NewAdminHandler(adminSvc, sanitySvc, validate)

	// Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	// Create ServeMux router
	mux := http.NewServeMux()

	// Create a subrouter for API v1 with the /v1 prefix
	apiV1Mux := http.NewServeMux()
	taskHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	profileHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	competitorHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	templateHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	stripeHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	aiHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	adminHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// Redirect /api/* to /v1/* for backward compatibility
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, "/v1/"+rest, http.StatusMovedPermanently)
	})

	// Redirect all other root-level requests to /v1/{path}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Avoid redirect loops by checking if already under /v1 or /api
		if strings.HasPrefix(r.URL.Path, "/v1/") || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/v1"+r.URL.Path, http.StatusMovedPermanently)
	})

	// Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Allow all origins for development
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), db, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		// Only remove the middleware if it exists.
		// This makes the client more robust, especially for operations like presigned URLs
		// that might inspect the middleware stack.
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
