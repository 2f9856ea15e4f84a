package service

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const MsgTemplateNotFound = "Template not found"

// TemplateService provides template operations. Writes that touch a template
// and its features or tech stack run as one transaction.
type TemplateService struct {
	store  *repository.Store
	events EventPublisher
}

// NewTemplateService creates a new instance of TemplateService. events may be nil.
func NewTemplateService(store *repository.Store, events EventPublisher) *TemplateService {
	return &TemplateService{store: store, events: events}
}

func (s *TemplateService) ListTemplates(ctx context.Context, filter entity.TemplateFilter) ([]*entity.Template, error) {
	templates, err := s.store.Templates.List(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing templates")
		return nil, err
	}
	return templates, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id int64) (*entity.Template, error) {
	template, err := s.store.Templates.GetTemplateByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgTemplateNotFound}
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting template %d", id)
		return nil, err
	}
	return template, nil
}

// CreateTemplate inserts the template, its features and its tech stack and
// returns the new id.
func (s *TemplateService) CreateTemplate(ctx context.Context, in CreateTemplateInput) (int64, error) {
	if err := validate.Struct(in); err != nil || !in.Price.Valid {
		return 0, &ValidationError{Message: "Missing required fields"}
	}
	if in.Price.Decimal.IsNegative() {
		return 0, &ValidationError{Message: "Price must not be negative"}
	}

	template := &entity.Template{
		Title:       &in.Title,
		Description: &in.Description,
		Price:       in.Price,
		Category:    &in.Category,
		Type:        &in.Type,
		Style:       &in.Style,
		ImageURL:    &in.ImageURL,
	}

	var id int64
	err := s.store.RunInTx(ctx, func(tx *repository.Store) error {
		var err error
		id, err = tx.Templates.CreateTemplate(ctx, template)
		if err != nil {
			return err
		}
		if err := tx.Templates.ReplaceFeatures(ctx, id, in.Features); err != nil {
			return err
		}
		return tx.Templates.ReplaceTechStack(ctx, id, in.TechStack)
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating template")
		return 0, err
	}

	template.ID = id
	template.Features = in.Features
	template.TechStack = in.TechStack
	publishEvent(ctx, s.events, "template", "created", id, template)
	return id, nil
}

// UpdateTemplate overwrites every scalar field with the input, so omitted
// fields become null. Features and tech stack are replaced only when present.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id int64, in UpdateTemplateInput) error {
	if in.Price.Valid && in.Price.Decimal.IsNegative() {
		return &ValidationError{Message: "Price must not be negative"}
	}

	template := &entity.Template{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Type:        in.Type,
		Style:       in.Style,
		ImageURL:    in.ImageURL,
	}

	err := s.store.RunInTx(ctx, func(tx *repository.Store) error {
		found, err := tx.Templates.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{Message: MsgTemplateNotFound}
		}

		if err := tx.Templates.UpdateTemplate(ctx, template); err != nil {
			return err
		}
		if in.Features != nil {
			if err := tx.Templates.ReplaceFeatures(ctx, id, in.Features); err != nil {
				return err
			}
		}
		if in.TechStack != nil {
			if err := tx.Templates.ReplaceTechStack(ctx, id, in.TechStack); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			logger.Error().Err(err).Msgf("Error updating template %d", id)
		}
		return err
	}

	publishEvent(ctx, s.events, "template", "updated", id, template)
	return nil
}

// DeleteTemplate removes the template together with its features, tech stack
// and every purchase of it.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id int64) error {
	err := s.store.RunInTx(ctx, func(tx *repository.Store) error {
		found, err := tx.Templates.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{Message: MsgTemplateNotFound}
		}

		if err := tx.Templates.DeleteFeatures(ctx, id); err != nil {
			return err
		}
		if err := tx.Templates.DeleteTechStack(ctx, id); err != nil {
			return err
		}
		if err := tx.Purchases.DeleteByTemplate(ctx, id); err != nil {
			return err
		}
		return tx.Templates.DeleteTemplate(ctx, id)
	})
	if err != nil {
		if !isDomainError(err) {
			logger.Error().Err(err).Msgf("Error deleting template %d", id)
		}
		return err
	}

	publishEvent(ctx, s.events, "template", "deleted", id, map[string]int64{"id": id})
	return nil
}

// isDomainError reports whether err is one of the client facing error types.
func isDomainError(err error) bool {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var conflictErr *ConflictError
	return errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &conflictErr)
}
