package service

import (
	"context"
	"errors"
	"strings"
	"time"

	alertserrors "officehub/internal/alerts/errors"
	"officehub/internal/alerts/repository"
	"officehub/internal/alerts/validator"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/model"
	"officehub/pkg/sanitizer"
	"officehub/pkg/timeutil"

	"github.com/google/uuid"
)

type AlertService interface {
	List(ctx context.Context, targetAudience string) ([]*model.Alert, error)
	Get(ctx context.Context, id string) (*model.Alert, error)
	Create(ctx context.Context, req *model.AlertCreate) (*model.Alert, error)
	Update(ctx context.Context, id string, req *model.AlertUpdate) (*model.Alert, error)
	Delete(ctx context.Context, id string) error
}

type alertService struct {
	repo      repository.AlertRepository
	validator *validator.AlertValidator
	cfg       *config.Config
	clock     timeutil.Clock
}

type Option func(*alertService)

func WithClock(clock timeutil.Clock) Option {
	return func(s *alertService) { s.clock = clock }
}

func NewAlertService(repo repository.AlertRepository, validator *validator.AlertValidator, cfg *config.Config, opts ...Option) AlertService {
	s := &alertService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		clock:     timeutil.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *alertService) List(ctx context.Context, targetAudience string) ([]*model.Alert, error) {
	alerts, err := s.repo.FindVisible(ctx, sanitizer.SanitizeAudience(targetAudience), s.clock.Now())
	if err != nil {
		s.cfg.Log.Error("Failed to list alerts", "target_audience", targetAudience, "error", err)
		return nil, apperrors.StorageUnavailable("Failed to list alerts", err)
	}
	return alerts, nil
}

func (s *alertService) Get(ctx context.Context, id string) (*model.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve alert")
	}
	return alert, nil
}

func (s *alertService) Create(ctx context.Context, req *model.AlertCreate) (*model.Alert, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Alert validation failed", "error", err)
		return nil, validationError(err)
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	alert := &model.Alert{
		ID:             uuid.New().String(),
		Title:          sanitizer.SanitizeName(req.Title),
		Message:        sanitizer.SanitizeText(req.Message),
		Type:           orDefault(req.Type, model.AlertTypeInfo),
		Priority:       orDefault(req.Priority, model.AlertPriorityNormal),
		TargetAudience: orDefault(sanitizer.SanitizeAudience(req.TargetAudience), model.AudienceAll),
		CreatedBy:      orDefault(sanitizer.SanitizeName(req.CreatedBy), model.DefaultCreatedBy),
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      expiresAt,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		s.cfg.Log.Error("Failed to create alert", "error", err)
		return nil, apperrors.StorageUnavailable("Failed to create alert", err)
	}

	s.cfg.Log.Info("Alert created successfully",
		"id", alert.ID,
		"type", alert.Type,
		"priority", alert.Priority,
		"target_audience", alert.TargetAudience,
	)
	return alert, nil
}

// Update overwrites only the fields present in req. An empty expires_at
// clears the expiry.
func (s *alertService) Update(ctx context.Context, id string, req *model.AlertUpdate) (*model.Alert, error) {
	if err := s.validator.ValidateUpdate(req); err != nil {
		s.cfg.Log.Warn("Alert update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve alert")
	}

	if err := merge(existing, req); err != nil {
		return nil, err
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.Replace(ctx, existing); err != nil {
		return nil, s.mapError(err, id, "Failed to update alert")
	}

	s.cfg.Log.Info("Alert updated successfully", "id", id)
	return existing, nil
}

func (s *alertService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, id, "Failed to delete alert")
	}
	s.cfg.Log.Info("Alert deleted successfully", "id", id)
	return nil
}

func merge(alert *model.Alert, req *model.AlertUpdate) error {
	if req.Title != nil {
		title := sanitizer.SanitizeName(*req.Title)
		if title == "" {
			return blankField("title")
		}
		alert.Title = title
	}
	if req.Message != nil {
		message := sanitizer.SanitizeText(*req.Message)
		if message == "" {
			return blankField("message")
		}
		alert.Message = message
	}
	if req.Type != nil && *req.Type != "" {
		alert.Type = *req.Type
	}
	if req.Priority != nil && *req.Priority != "" {
		alert.Priority = *req.Priority
	}
	if req.TargetAudience != nil {
		audience := sanitizer.SanitizeAudience(*req.TargetAudience)
		if audience == "" {
			return blankField("target_audience")
		}
		alert.TargetAudience = audience
	}
	if req.ExpiresAt != nil {
		expiresAt, err := parseExpiry(*req.ExpiresAt)
		if err != nil {
			return err
		}
		alert.ExpiresAt = expiresAt
	}
	return nil
}

func parseExpiry(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := timeutil.Normalize(raw)
	if err != nil {
		return nil, apperrors.InvalidTimestamp("expires_at", raw)
	}
	return &t, nil
}

func (s *alertService) mapError(err error, id, message string) error {
	if errors.Is(err, alertserrors.ErrNotFound) {
		return apperrors.AlertNotFound(id)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.StorageUnavailable(message, err)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func blankField(field string) error {
	return apperrors.Validation("Invalid alert", map[string]any{field: field + " must not be blank"})
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid alert", verrs.Details())
	}
	return apperrors.Validation("Invalid alert", map[string]any{"error": err.Error()})
}
