package config

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// ResolveSecrets fills secret fields that were not provided via the
// environment from GCP Secret Manager. It is a no-op when GCPProjectID is
// empty, so local development keeps working with a plain .env file.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	if cfg.GCPProjectID == "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	targets := []struct {
		name string
		dst  *string
	}{
		{"stripe-secret-key", &cfg.StripeSecretKey},
		{"stripe-webhook-secret", &cfg.StripeWebhookSecret},
		{"openai-api-key", &cfg.OpenAIAPIKey},
		{"supabase-service-role-key", &cfg.SupabaseServiceRoleKey},
		{"sanity-token", &cfg.SanityToken},
	}

	for _, t := range targets {
		if *t.dst != "" {
			continue
		}
		resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", cfg.GCPProjectID, t.name)
		result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: resourceName,
		})
		if err != nil {
			return fmt.Errorf("access secret %s: %w", t.name, err)
		}
		*t.dst = string(result.Payload.Data)
	}

	return nil
}
