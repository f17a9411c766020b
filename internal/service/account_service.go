package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/credentials"
	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/repository"
	"studyguard/internal/validation"
)

const (
	ActionCreate = "create"
	ActionJoin   = "join"
)

// RegisterInput describes a first sign-in. Parents either create a household
// or join one by code; children always join by code.
type RegisterInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name" validate:"required,max=100"`
	Role       string `json:"role" validate:"required,oneof=parent child"`
	Action     string `json:"action" validate:"omitempty,oneof=create join"`
	FamilyName string `json:"family_name" validate:"max=100"`
	Code       string `json:"code" validate:"max=16"`
}

type RegisterResult struct {
	User   models.User   `json:"user"`
	Family models.Family `json:"family"`
}

// AccountService resolves household membership when an account is created
type AccountService struct {
	db        *database.DB
	repos     *repository.Repositories
	household *HouseholdService
	logg      *logger.Logger
	now       func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(deps Deps, household *HouseholdService) *AccountService {
	return &AccountService{
		db:        deps.DB,
		repos:     deps.Repos,
		household: household,
		logg:      deps.logger(),
		now:       utcNow,
	}
}

// Register creates the user and resolves its family in one transaction.
// Nothing is written when the family code is unknown.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Code = credentials.NormalizeInviteCode(input.Code)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	role := models.Role(input.Role)
	switch {
	case role == models.RoleChild:
		if input.Code == "" {
			return nil, apperr.Validation("a family code is required for child accounts")
		}
		if input.Action == ActionCreate {
			return nil, apperr.Validation("child accounts can only join a family")
		}
		return s.join(ctx, input, role)
	case input.Action == ActionJoin:
		if input.Code == "" {
			return nil, apperr.Validation("a family code is required to join")
		}
		return s.join(ctx, input, role)
	case input.Action == ActionCreate:
		return s.createHousehold(ctx, input)
	default:
		return nil, apperr.Validation("action must be create or join")
	}
}

func (s *AccountService) join(ctx context.Context, input RegisterInput, role models.Role) (*RegisterResult, error) {
	var result RegisterResult
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		repos := s.repos.WithTx(tx)

		family, err := familyByCode(ctx, repos, input.Code)
		if err != nil {
			return err
		}
		if family == nil {
			return apperr.NotFound("no family with code %s", input.Code)
		}

		user, err := s.insertUser(ctx, repos, input, role, family.ID)
		if err != nil {
			return err
		}

		if role == models.RoleChild {
			settings := models.DefaultChildSettings(user.ID)
			settings.UpdatedAt = s.now()
			if err := repos.ChildSettings.Insert(ctx, &settings); err != nil {
				return err
			}
		}

		result = RegisterResult{User: *user, Family: *family}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": result.User.ID, "family_id": result.Family.ID, "role": role})
	s.logg.Info(logCtx, "account joined family")
	return &result, nil
}

func (s *AccountService) createHousehold(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	familyName := strings.TrimSpace(input.FamilyName)
	if familyName == "" {
		familyName = fmt.Sprintf("%s's Household", input.Name)
	}

	var lastErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.household.newCode()
		if err != nil {
			return nil, err
		}

		var result RegisterResult
		err = s.db.WithTx(ctx, func(tx *database.Tx) error {
			repos := s.repos.WithTx(tx)
			family, err := s.household.createFamily(ctx, repos, familyName, code)
			if err != nil {
				return err
			}
			user, err := s.insertUser(ctx, repos, input, models.RoleParent, family.ID)
			if err != nil {
				return err
			}
			result = RegisterResult{User: *user, Family: *family}
			return nil
		})
		if err == nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": result.User.ID, "family_id": result.Family.ID})
			s.logg.Info(logCtx, "household created")
			return &result, nil
		}
		if !errors.Is(err, ErrFamilyCodeTaken) {
			return nil, err
		}
		lastErr = err
		s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "invite code collision, retrying")
	}
	return nil, lastErr
}

func (s *AccountService) insertUser(ctx context.Context, repos *repository.Repositories, input RegisterInput, role models.Role, familyID int64) (*models.User, error) {
	now := s.now()
	user := &models.User{
		Email:     input.Email,
		Name:      input.Name,
		Role:      role,
		FamilyID:  &familyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.Users.Insert(ctx, user); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict(err, "an account with this email already exists")
		}
		return nil, err
	}
	return user, nil
}
