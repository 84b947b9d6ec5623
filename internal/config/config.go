package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	JWTSecret string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`

	// Supabase admin API (user provisioning / deletion)
	SupabaseURL            string `envconfig:"SUPABASE_URL" required:"true"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`

	// Stripe
	StripeSecretKey       string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret   string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceProMonthly string `envconfig:"STRIPE_PRICE_PRO_MONTHLY"`
	StripePriceProAnnual  string `envconfig:"STRIPE_PRICE_PRO_ANNUAL"`
	StripeReturnURL       string `envconfig:"STRIPE_RETURN_URL" default:"http://localhost:3000/settings"`

	// OpenAI assistant
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel      string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	AIMonthlyCredits int    `envconfig:"AI_MONTHLY_CREDITS" default:"500"`

	// Sanity CMS (templates / case studies source)
	SanityProjectID  string `envconfig:"SANITY_PROJECT_ID"`
	SanityDataset    string `envconfig:"SANITY_DATASET" default:"production"`
	SanityAPIVersion string `envconfig:"SANITY_API_VERSION" default:"2024-01-01"`
	SanityToken      string `envconfig:"SANITY_TOKEN"`

	// Supabase storage (S3-compatible), used for cached link thumbnails
	S3URL       string `envconfig:"SUPABASE_S3_URL"`
	S3Bucket    string `envconfig:"SUPABASE_S3_BUCKET" default:"thumbnails"`
	S3Region    string `envconfig:"SUPABASE_S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"SUPABASE_S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"SUPABASE_S3_SECRET_KEY"`

	// GCP project for Secret Manager; empty disables secret resolution
	GCPProjectID string `envconfig:"GCP_PROJECT_ID"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
