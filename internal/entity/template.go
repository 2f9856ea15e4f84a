package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template is a sellable digital template. Scalar columns are nullable because
// an update replaces every field with whatever the client sent.
type Template struct {
	ID          int64               `json:"id"`
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	Category    *string             `json:"category"`
	Type        *string             `json:"type"`
	Style       *string             `json:"style"`
	ImageURL    *string             `json:"image_url"`
	CreatedAt   time.Time           `json:"created_at"`
	Features    []string            `json:"features"`
	TechStack   []string            `json:"tech_stack"`
}

type TemplateFilter struct {
	Category string
	Type     string
	Style    string
}

/*
Mysql Table

CREATE TABLE templates (
	id INT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255),
	description TEXT,
	price DECIMAL(10,2),
	category VARCHAR(100),
	type VARCHAR(100),
	style VARCHAR(100),
	image_url VARCHAR(500),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE template_features (
	id INT AUTO_INCREMENT PRIMARY KEY,
	template_id INT NOT NULL REFERENCES templates(id),
	feature_name VARCHAR(255) NOT NULL
);

CREATE TABLE template_tech_stack (
	id INT AUTO_INCREMENT PRIMARY KEY,
	template_id INT NOT NULL REFERENCES templates(id),
	tech_name VARCHAR(255) NOT NULL
);
*/
