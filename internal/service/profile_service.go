package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

// ProfileService reads and edits the signed-in student's profile.
type ProfileService struct {
	repo      profileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// Get returns the profile, falling back to one derived from the session when none is stored yet.
func (s *ProfileService) Get(ctx context.Context, session models.Session) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	profile, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		mapped := storeError(err, "profile not found", "failed to load profile")
		if errors.Is(mapped, appErrors.ErrNotFound) {
			return &models.Profile{ID: session.UserID, Email: session.Email}, nil
		}
		s.logger.Error("load profile failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, mapped
	}
	return profile, nil
}

// Update creates or replaces the editable profile fields.
func (s *ProfileService) Update(ctx context.Context, session models.Session, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile := &models.Profile{
		ID:         session.UserID,
		Email:      session.Email,
		FullName:   strings.TrimSpace(req.FullName),
		University: strings.TrimSpace(req.University),
		Major:      strings.TrimSpace(req.Major),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		s.logger.Error("upsert profile failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "profile not found", "failed to update profile")
	}
	return profile, nil
}
