package repository

import (
	"context"
	"database/sql"
	"fmt"

	"viralio/internal/model"
)

// TemplateRepository defines methods for accessing content templates and
// their tier visibility.
type TemplateRepository interface {
	// ListVisibleToTier returns templates whose visibility rows include
	// the given tier.
	ListVisibleToTier(ctx context.Context, t model.Tier) ([]model.Template, error)
	// Upsert writes a template by its (title, format) natural key and
	// replaces its visibility rows.
	Upsert(ctx context.Context, tpl *model.Template) error
}

type templateRepo struct {
	db *sql.DB
}

// NewTemplateRepo creates a new TemplateRepository.
func NewTemplateRepo(db *sql.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) ListVisibleToTier(ctx context.Context, t model.Tier) ([]model.Template, error) {
	query := `
		SELECT t.id, t.title, t.format, t.hook, t.body, t.cta, t.sanity_id, t.created_at, t.updated_at
		FROM templates t
		JOIN template_visibility v ON v.template_id = t.id
		WHERE v.tier = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("list templates for tier %s: %w", t, err)
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var tpl model.Template
		if err := rows.Scan(&tpl.ID, &tpl.Title, &tpl.Format, &tpl.Hook, &tpl.Body, &tpl.CTA,
			&tpl.SanityID, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepo) Upsert(ctx context.Context, tpl *model.Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin template upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// No FK to the CMS exists, so (title, format) is the natural key.
	upsertQ := `
		INSERT INTO templates (title, format, hook, body, cta, sanity_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (title, format) DO UPDATE
		SET hook = EXCLUDED.hook,
		    body = EXCLUDED.body,
		    cta = EXCLUDED.cta,
		    sanity_id = EXCLUDED.sanity_id,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRowContext(ctx, upsertQ,
		tpl.Title, tpl.Format, tpl.Hook, tpl.Body, tpl.CTA, tpl.SanityID,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return fmt.Errorf("upsert template %q: %w", tpl.Title, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM template_visibility WHERE template_id = $1`, tpl.ID); err != nil {
		return fmt.Errorf("clear visibility for template %s: %w", tpl.ID, err)
	}
	for _, t := range tpl.Tiers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO template_visibility (template_id, tier) VALUES ($1, $2)`, tpl.ID, t); err != nil {
			return fmt.Errorf("insert visibility %s for template %s: %w", t, tpl.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit template upsert: %w", err)
	}
	return nil
}
