package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"viralio/internal/config"
	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
)

// SyncResult summarizes one CMS sync run.
type SyncResult struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
}

// SanityService mirrors templates and case studies from the Sanity CMS into
// Postgres. The sync is admin-triggered; rows deleted upstream are kept.
type SanityService interface {
	SyncTemplates(ctx context.Context) (*SyncResult, error)
	SyncCaseStudies(ctx context.Context, adminUserID string) (*SyncResult, error)
}

type sanityService struct {
	cfg       *config.Config
	client    *http.Client
	templates repository.TemplateRepository
	tasks     repository.TaskRepository
	logger    zerolog.Logger
}

// NewSanityService creates a new SanityService with a scoped logger.
func NewSanityService(cfg *config.Config, templates repository.TemplateRepository, tasks repository.TaskRepository, logger zerolog.Logger) SanityService {
	return &sanityService{
		cfg:       cfg,
		client:    &http.Client{Timeout: 15 * time.Second},
		templates: templates,
		tasks:     tasks,
		logger:    logger.With().Str("service", "SanityService").Logger(),
	}
}

// query runs a GROQ query against the project's dataset and decodes the
// result array into out.
func (s *sanityService) query(ctx context.Context, groq string, out any) error {
	if s.cfg.SanityProjectID == "" {
		return fmt.Errorf("sanity project is not configured")
	}
	endpoint := fmt.Sprintf("https://%s.api.sanity.io/v%s/data/query/%s?query=%s",
		s.cfg.SanityProjectID, s.cfg.SanityAPIVersion, s.cfg.SanityDataset, url.QueryEscape(groq))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if s.cfg.SanityToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.SanityToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("query sanity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sanity query returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode sanity response: %w", err)
	}
	return json.Unmarshal(envelope.Result, out)
}

type sanityTemplate struct {
	ID     string   `json:"_id"`
	Title  string   `json:"title"`
	Format string   `json:"format"`
	Hook   string   `json:"hook"`
	Body   string   `json:"body"`
	CTA    string   `json:"cta"`
	Tiers  []string `json:"tiers"`
}

// SyncTemplates pulls all template documents and upserts them. A bad
// document is logged and skipped; one malformed entry must not abort the
// run.
func (s *sanityService) SyncTemplates(ctx context.Context) (*SyncResult, error) {
	var docs []sanityTemplate
	groq := `*[_type == "template"]{_id, title, format, hook, body, cta, tiers}`
	if err := s.query(ctx, groq, &docs); err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, doc := range docs {
		if doc.Title == "" || doc.Format == "" {
			s.logger.Warn().Str("sanity_id", doc.ID).Msg("Skipping template with missing title or format")
			result.Skipped++
			continue
		}
		tiers := make([]model.Tier, 0, len(doc.Tiers))
		for _, t := range doc.Tiers {
			tiers = append(tiers, model.Tier(t))
		}
		if len(tiers) == 0 {
			tiers = []model.Tier{model.TierPro, model.TierAdmin}
		}
		sanityID := doc.ID
		tpl := &model.Template{
			Title:    doc.Title,
			Format:   model.Format(doc.Format),
			Hook:     doc.Hook,
			Body:     doc.Body,
			CTA:      doc.CTA,
			SanityID: &sanityID,
			Tiers:    tiers,
		}
		if err := s.templates.Upsert(ctx, tpl); err != nil {
			s.logger.Error().Err(err).Str("sanity_id", doc.ID).Msg("Failed to upsert template")
			result.Skipped++
			continue
		}
		result.Synced++
	}
	s.logger.Info().Int("synced", result.Synced).Int("skipped", result.Skipped).Msg("Template sync finished")
	return result, nil
}

type sanityCaseStudy struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Niche  string `json:"niche"`
	Format string `json:"format"`
	Hook   string `json:"hook"`
	Body   string `json:"body"`
	CTA    string `json:"cta"`
}

// SyncCaseStudies mirrors case-study documents into the tasks table as
// admin-owned read-only rows keyed by their Sanity id.
func (s *sanityService) SyncCaseStudies(ctx context.Context, adminUserID string) (*SyncResult, error) {
	var docs []sanityCaseStudy
	groq := `*[_type == "caseStudy"]{_id, title, niche, format, hook, body, cta}`
	if err := s.query(ctx, groq, &docs); err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, doc := range docs {
		if doc.Title == "" {
			s.logger.Warn().Str("sanity_id", doc.ID).Msg("Skipping case study with missing title")
			result.Skipped++
			continue
		}
		sanityID := doc.ID
		task := &model.Task{
			UserID:   adminUserID,
			Title:    doc.Title,
			Niche:    doc.Niche,
			Format:   model.Format(doc.Format),
			Status:   model.StatusPublished,
			Hook:     doc.Hook,
			Body:     doc.Body,
			CTA:      doc.CTA,
			SanityID: &sanityID,
		}
		if err := s.tasks.UpsertCaseStudy(ctx, task); err != nil {
			s.logger.Error().Err(err).Str("sanity_id", doc.ID).Msg("Failed to upsert case study")
			result.Skipped++
			continue
		}
		result.Synced++
	}
	s.logger.Info().Int("synced", result.Synced).Int("skipped", result.Skipped).Msg("Case study sync finished")
	return result, nil
}
