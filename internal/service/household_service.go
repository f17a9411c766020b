package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/credentials"
	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

// maxCodeAttempts bounds how many fresh invite codes are tried before giving up.
const maxCodeAttempts = 5

// ErrFamilyCodeTaken marks a family insert that lost on the code uniqueness constraint.
var ErrFamilyCodeTaken = errors.New("family code already in use")

// HouseholdService handles families, invite codes and membership listing
type HouseholdService struct {
	repos   *repository.Repositories
	logg    *logger.Logger
	newCode func() (string, error)
	now     func() time.Time
}

// NewHouseholdService creates a new household service
func NewHouseholdService(deps Deps) *HouseholdService {
	return &HouseholdService{
		repos:   deps.Repos,
		logg:    deps.logger(),
		newCode: credentials.GenerateInviteCode,
		now:     utcNow,
	}
}

// CreateFamily stores a family under the given invite code. A code that is
// already taken fails with a conflict wrapping ErrFamilyCodeTaken.
func (s *HouseholdService) CreateFamily(ctx context.Context, name, code string) (*models.Family, error) {
	return s.createFamily(ctx, s.repos, name, code)
}

// CreateFamilyWithFreshCode generates invite codes until one is free.
func (s *HouseholdService) CreateFamilyWithFreshCode(ctx context.Context, name string) (*models.Family, error) {
	var lastErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		family, err := s.createFamily(ctx, s.repos, name, code)
		if err == nil {
			return family, nil
		}
		if !errors.Is(err, ErrFamilyCodeTaken) {
			return nil, err
		}
		lastErr = err
		s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "invite code collision, retrying")
	}
	return nil, lastErr
}

func (s *HouseholdService) createFamily(ctx context.Context, repos *repository.Repositories, name, code string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("family name is required")
	}
	code = credentials.NormalizeInviteCode(code)
	if !credentials.ValidInviteCode(code) {
		return nil, apperr.Validation("invalid family code %q", code)
	}

	now := s.now()
	family := &models.Family{Name: name, Code: code, CreatedAt: now, UpdatedAt: now}
	if err := repos.Families.Insert(ctx, family); err != nil {
		if apperr.IsConflict(err) {
			return nil, fmt.Errorf("%w: %w", ErrFamilyCodeTaken, err)
		}
		return nil, err
	}
	return family, nil
}

// GetFamily retrieves a family by ID
func (s *HouseholdService) GetFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	family, err := s.repos.Families.SelectOne(ctx, repository.Eq("id", familyID))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("family %d not found", familyID)
		}
		return nil, err
	}
	return family, nil
}

// GetFamilyByCode returns nil without an error when no family uses code
func (s *HouseholdService) GetFamilyByCode(ctx context.Context, code string) (*models.Family, error) {
	return familyByCode(ctx, s.repos, code)
}

func familyByCode(ctx context.Context, repos *repository.Repositories, code string) (*models.Family, error) {
	code = credentials.NormalizeInviteCode(code)
	if code == "" {
		return nil, nil
	}
	family, err := repos.Families.SelectOne(ctx, repository.Eq("code", code))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return family, nil
}

// RenameFamily changes a family's display name
func (s *HouseholdService) RenameFamily(ctx context.Context, familyID int64, name string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("family name is required")
	}
	n, err := s.repos.Families.Update(ctx,
		[]repository.Cond{repository.Eq("name", name), repository.Eq("updated_at", s.now())},
		repository.Eq("id", familyID))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("family %d not found", familyID)
	}
	return s.GetFamily(ctx, familyID)
}

// ListMembers returns every user of the family in join order
func (s *HouseholdService) ListMembers(ctx context.Context, familyID int64) ([]models.User, error) {
	return s.listMembers(ctx, familyID, "")
}

// ListChildren returns the family's children in join order
func (s *HouseholdService) ListChildren(ctx context.Context, familyID int64) ([]models.User, error) {
	return s.listMembers(ctx, familyID, models.RoleChild)
}

// ListParents returns the family's parents in join order
func (s *HouseholdService) ListParents(ctx context.Context, familyID int64) ([]models.User, error) {
	return s.listMembers(ctx, familyID, models.RoleParent)
}

func (s *HouseholdService) listMembers(ctx context.Context, familyID int64, role models.Role) ([]models.User, error) {
	where := []repository.Cond{repository.Eq("family_id", familyID)}
	if role != "" {
		where = append(where, repository.Eq("role", string(role)))
	}
	return s.repos.Users.SelectMany(ctx, repository.Query{
		Where:   where,
		OrderBy: []repository.Order{{Column: "created_at"}, {Column: "id"}},
	})
}

// GetFamilyWithMembers loads a family and its members together
func (s *HouseholdService) GetFamilyWithMembers(ctx context.Context, familyID int64) (*models.FamilyWithMembers, error) {
	family, err := s.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	members, err := s.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return &models.FamilyWithMembers{Family: *family, Members: members}, nil
}

// GetUser retrieves a user by ID
func (s *HouseholdService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repos.Users.SelectOne(ctx, repository.Eq("id", userID))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user %d not found", userID)
		}
		return nil, err
	}
	return user, nil
}

// GetChild retrieves a child that belongs to familyID
func (s *HouseholdService) GetChild(ctx context.Context, familyID, childID int64) (*models.User, error) {
	user, err := s.GetUser(ctx, childID)
	if err != nil {
		return nil, err
	}
	if !user.IsChild() || !user.BelongsTo(familyID) {
		return nil, apperr.NotFound("child %d not found in family %d", childID, familyID)
	}
	return user, nil
}
