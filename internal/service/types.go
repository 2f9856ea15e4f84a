package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// CreateTemplateInput is the payload for a new template. Features and
// TechStack are optional.
type CreateTemplateInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Price       decimal.NullDecimal `json:"price"`
	Category    string              `json:"category" validate:"required"`
	Type        string              `json:"type" validate:"required"`
	Style       string              `json:"style" validate:"required"`
	ImageURL    string              `json:"image_url" validate:"required"`
	Features    []string            `json:"features"`
	TechStack   []string            `json:"tech_stack"`
}

// UpdateTemplateInput replaces every scalar field, so a nil field clears the
// column. A nil Features or TechStack slice (omitted or null in JSON) leaves
// those rows alone; an empty slice removes them all.
type UpdateTemplateInput struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Category    *string             `json:"category"`
	Type        *string             `json:"type"`
	Style       *string             `json:"style"`
	ImageURL    *string             `json:"image_url"`
	Features    []string            `json:"features"`
	TechStack   []string            `json:"tech_stack"`
}

type CreateUserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// UpdateUserInput keeps the stored value of every nil field.
type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type CreatePurchaseInput struct {
	UserID     int64 `json:"user_id" validate:"required"`
	TemplateID int64 `json:"template_id" validate:"required"`
}

type CreateBankInfoInput struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	AccountName   string `json:"account_name" validate:"required"`
}

// UpdateBankInfoInput keeps the stored value of every nil field.
type UpdateBankInfoInput struct {
	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number"`
	AccountName   *string `json:"account_name"`
}
