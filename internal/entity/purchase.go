package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TemplateID  int64     `json:"template_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PurchaseDetail is a purchase joined with its buyer and template. Description
// and ImageURL are only filled for single purchase lookups.
type PurchaseDetail struct {
	Purchase
	UserName      *string             `json:"user_name"`
	UserEmail     *string             `json:"user_email"`
	TemplateTitle *string             `json:"template_title"`
	TemplatePrice decimal.NullDecimal `json:"template_price"`
	Description   *string             `json:"description,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
}

// UserPurchase is one row of a user's purchase history.
type UserPurchase struct {
	Purchase
	TemplateTitle *string             `json:"template_title"`
	Price         decimal.NullDecimal `json:"price"`
}

// PurchaseSummary is a purchase listed for one user, with template summary fields.
type PurchaseSummary struct {
	Purchase
	TemplateTitle *string             `json:"template_title"`
	TemplatePrice decimal.NullDecimal `json:"template_price"`
	ImageURL      *string             `json:"image_url"`
	Category      *string             `json:"category"`
	Type          *string             `json:"type"`
}

/*
Mysql Table

CREATE TABLE purchases (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL REFERENCES users(id),
	template_id INT NOT NULL REFERENCES templates(id),
	purchased_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, template_id)
);
*/
