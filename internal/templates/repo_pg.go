package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-builder/resume/model"
)

// PGRepo implements Repo on the templates table. The full template is stored
// in the config column; id, name, category and is_premium are mirrored for queries.
type PGRepo struct {
	DB *sql.DB
}

// List returns active templates ordered by name.
func (r *PGRepo) List(ctx context.Context) ([]model.Template, error) {
	const query = `
SELECT id, name, category, is_premium, config
FROM templates
WHERE is_active = TRUE
ORDER BY created_at ASC, name ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns an active template by id.
func (r *PGRepo) Get(ctx context.Context, id string) (model.Template, error) {
	const query = `
SELECT id, name, category, is_premium, config
FROM templates
WHERE id = $1 AND is_active = TRUE
LIMIT 1`

	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Template{}, ErrNotFound
		}
		return model.Template{}, err
	}
	return t, nil
}

// Upsert writes a template, used to seed the built-in catalog.
func (r *PGRepo) Upsert(ctx context.Context, t model.Template) error {
	const query = `
INSERT INTO templates (id, name, category, is_premium, is_active, config, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, now(), now())
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    category = EXCLUDED.category,
    is_premium = EXCLUDED.is_premium,
    config = EXCLUDED.config,
    updated_at = now()`

	config, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query, t.ID, t.Name, t.Category, t.IsPremium, config)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (model.Template, error) {
	var (
		id, name, category string
		premium            bool
		config             []byte
	)
	if err := row.Scan(&id, &name, &category, &premium, &config); err != nil {
		return model.Template{}, err
	}
	var t model.Template
	if len(config) > 0 {
		if err := json.Unmarshal(config, &t); err != nil {
			return model.Template{}, fmt.Errorf("decode template %s: %w", id, err)
		}
	}
	t.ID = id
	t.Name = name
	t.Category = category
	t.IsPremium = premium
	return t, nil
}
