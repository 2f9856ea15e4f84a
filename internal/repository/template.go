package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"marketplace-service/internal/entity"
)

const templateColumns = `id, title, description, price, category, type, style, image_url, created_at`

type TemplateRepository struct {
	db DBTX
}

func NewTemplateRepository(db DBTX) *TemplateRepository {
	return &TemplateRepository{db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*entity.Template, error) {
	t := &entity.Template{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Price, &t.Category, &t.Type, &t.Style, &t.ImageURL, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the templates matching every non-empty filter, newest first,
// each with its features and tech stack.
func (r *TemplateRepository) List(ctx context.Context, filter entity.TemplateFilter) ([]*entity.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE 1=1`
	var args []any
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Style != "" {
		query += ` AND style = ?`
		args = append(args, filter.Style)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	templates, err := r.scanAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	// rows are closed before the per-template lookups so a single connection pool cannot deadlock
	for _, t := range templates {
		if err := r.loadChildren(ctx, t); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (r *TemplateRepository) scanAll(ctx context.Context, query string, args ...any) ([]*entity.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list templates")
	}
	defer rows.Close()

	templates := []*entity.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, translate(err, "scan template")
		}
		templates = append(templates, t)
	}
	return templates, translate(rows.Err(), "list templates")
}

func (r *TemplateRepository) loadChildren(ctx context.Context, t *entity.Template) error {
	features, err := ListChildren(ctx, r.db, FeatureTable, t.ID)
	if err != nil {
		return err
	}
	techStack, err := ListChildren(ctx, r.db, TechStackTable, t.ID)
	if err != nil {
		return err
	}
	t.Features = features
	t.TechStack = techStack
	return nil
}

// GetTemplateByID returns ErrNotFound when no template has the id.
func (r *TemplateRepository) GetTemplateByID(ctx context.Context, id int64) (*entity.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = ?`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translate(err, "get template")
	}
	if err := r.loadChildren(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM templates WHERE id = ?`, id)
}

// CreateTemplate inserts the scalar columns and returns the new id.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, t *entity.Template) (int64, error) {
	query := `INSERT INTO templates (title, description, price, category, type, style, image_url) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, t.Title, t.Description, t.Price, t.Category, t.Type, t.Style, t.ImageURL)
	if err != nil {
		return 0, translate(err, "insert template")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err, "insert template")
	}
	return id, nil
}

// UpdateTemplate overwrites every scalar column, including with NULLs.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, t *entity.Template) error {
	query := `UPDATE templates SET title = ?, description = ?, price = ?, category = ?, type = ?, style = ?, image_url = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, t.Title, t.Description, t.Price, t.Category, t.Type, t.Style, t.ImageURL, t.ID)
	return translate(err, "update template")
}

func (r *TemplateRepository) ReplaceFeatures(ctx context.Context, id int64, features []string) error {
	return ReplaceChildren(ctx, r.db, FeatureTable, id, features)
}

func (r *TemplateRepository) ReplaceTechStack(ctx context.Context, id int64, techStack []string) error {
	return ReplaceChildren(ctx, r.db, TechStackTable, id, techStack)
}

func (r *TemplateRepository) DeleteFeatures(ctx context.Context, id int64) error {
	return DeleteChildren(ctx, r.db, FeatureTable, id)
}

func (r *TemplateRepository) DeleteTechStack(ctx context.Context, id int64) error {
	return DeleteChildren(ctx, r.db, TechStackTable, id)
}

// DeleteTemplate removes only the template row; owned rows must go first.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	return translate(err, "delete template")
}

func exists(ctx context.Context, q DBTX, query string, args ...any) (bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, translate(err, "existence check")
	}
	return true, nil
}
