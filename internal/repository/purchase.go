package repository

import (
	"context"

	"marketplace-service/internal/entity"
)

type PurchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db}
}

func (r *PurchaseRepository) ListPurchases(ctx context.Context) ([]*entity.PurchaseDetail, error) {
	query := `
		SELECT p.id, p.user_id, p.template_id, p.purchased_at,
		       u.name, u.email, t.title, t.price
		FROM purchases p
		JOIN users u ON p.user_id = u.id
		JOIN templates t ON p.template_id = t.id
		ORDER BY p.purchased_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err, "list purchases")
	}
	defer rows.Close()

	purchases := []*entity.PurchaseDetail{}
	for rows.Next() {
		var p entity.PurchaseDetail
		err := rows.Scan(&p.ID, &p.UserID, &p.TemplateID, &p.PurchasedAt,
			&p.UserName, &p.UserEmail, &p.TemplateTitle, &p.TemplatePrice)
		if err != nil {
			return nil, translate(err, "scan purchase")
		}
		purchases = append(purchases, &p)
	}
	return purchases, translate(rows.Err(), "list purchases")
}

// GetPurchaseByID returns ErrNotFound when no purchase has the id.
func (r *PurchaseRepository) GetPurchaseByID(ctx context.Context, id int64) (*entity.PurchaseDetail, error) {
	query := `
		SELECT p.id, p.user_id, p.template_id, p.purchased_at,
		       u.name, u.email, t.title, t.price, t.description, t.image_url
		FROM purchases p
		JOIN users u ON p.user_id = u.id
		JOIN templates t ON p.template_id = t.id
		WHERE p.id = ?`
	p := &entity.PurchaseDetail{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID, &p.TemplateID, &p.PurchasedAt,
		&p.UserName, &p.UserEmail, &p.TemplateTitle, &p.TemplatePrice, &p.Description, &p.ImageURL)
	if err != nil {
		return nil, translate(err, "get purchase")
	}
	return p, nil
}

// ListByUser returns one user's purchases with template summary fields.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.PurchaseSummary, error) {
	query := `
		SELECT p.id, p.user_id, p.template_id, p.purchased_at,
		       t.title, t.price, t.image_url, t.category, t.type
		FROM purchases p
		JOIN templates t ON p.template_id = t.id
		WHERE p.user_id = ?
		ORDER BY p.purchased_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "list user purchases")
	}
	defer rows.Close()

	purchases := []*entity.PurchaseSummary{}
	for rows.Next() {
		var p entity.PurchaseSummary
		err := rows.Scan(&p.ID, &p.UserID, &p.TemplateID, &p.PurchasedAt,
			&p.TemplateTitle, &p.TemplatePrice, &p.ImageURL, &p.Category, &p.Type)
		if err != nil {
			return nil, translate(err, "scan purchase")
		}
		purchases = append(purchases, &p)
	}
	return purchases, translate(rows.Err(), "list user purchases")
}

// ListHistory returns the purchase history embedded in a user lookup.
func (r *PurchaseRepository) ListHistory(ctx context.Context, userID int64) ([]entity.UserPurchase, error) {
	query := `
		SELECT p.id, p.user_id, p.template_id, p.purchased_at, t.title, t.price
		FROM purchases p
		JOIN templates t ON p.template_id = t.id
		WHERE p.user_id = ?
		ORDER BY p.purchased_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "list purchase history")
	}
	defer rows.Close()

	history := []entity.UserPurchase{}
	for rows.Next() {
		var p entity.UserPurchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.TemplateID, &p.PurchasedAt, &p.TemplateTitle, &p.Price); err != nil {
			return nil, translate(err, "scan purchase")
		}
		history = append(history, p)
	}
	return history, translate(rows.Err(), "list purchase history")
}

func (r *PurchaseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM purchases WHERE id = ?`, id)
}

func (r *PurchaseRepository) ExistsForPair(ctx context.Context, userID, templateID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM purchases WHERE user_id = ? AND template_id = ?`, userID, templateID)
}

// CreatePurchase returns ErrDuplicate when the user already owns the template.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, userID, templateID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO purchases (user_id, template_id) VALUES (?, ?)`, userID, templateID)
	if err != nil {
		return 0, translate(err, "insert purchase")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err, "insert purchase")
	}
	return id, nil
}

func (r *PurchaseRepository) DeletePurchase(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	return translate(err, "delete purchase")
}

func (r *PurchaseRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE user_id = ?`, userID)
	return translate(err, "delete user purchases")
}

func (r *PurchaseRepository) DeleteByTemplate(ctx context.Context, templateID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE template_id = ?`, templateID)
	return translate(err, "delete template purchases")
}
