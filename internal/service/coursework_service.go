package service

import (
	"context"
	"strings"
	"time"

	"studyguard/internal/apperr"
	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

type CourseInput struct {
	FamilyID    int64  `json:"-"`
	CreatedBy   *int64 `json:"-"`
	SubjectID   *int64 `json:"subject_id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type AssignmentInput struct {
	FamilyID      int64      `json:"-"`
	CourseID      int64      `json:"course_id" validate:"required"`
	ChildID       int64      `json:"child_id" validate:"required"`
	RewardMinutes int        `json:"reward_minutes" validate:"min=0,max=1440"`
	DueAt         *time.Time `json:"due_at"`
}

// CourseworkService manages subjects, courses and assignments. Completing an
// assignment credits its reward to the child's earned time.
type CourseworkService struct {
	db        *database.DB
	repos     *repository.Repositories
	household *HouseholdService
	logg      *logger.Logger
	now       func() time.Time
}

// NewCourseworkService creates a new coursework service
func NewCourseworkService(deps Deps, household *HouseholdService) *CourseworkService {
	return &CourseworkService{
		db:        deps.DB,
		repos:     deps.Repos,
		household: household,
		logg:      deps.logger(),
		now:       utcNow,
	}
}

// CreateSubject adds a subject; names are unique within a family
func (s *CourseworkService) CreateSubject(ctx context.Context, familyID int64, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("subject name is required")
	}
	subject := &models.Subject{FamilyID: familyID, Name: name, CreatedAt: s.now()}
	if err := s.repos.Subjects.Insert(ctx, subject); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict(err, "subject already exists")
		}
		return nil, err
	}
	return subject, nil
}

func (s *CourseworkService) ListSubjects(ctx context.Context, familyID int64) ([]models.Subject, error) {
	subjects, err := s.repos.Subjects.SelectMany(ctx, repository.Query{
		Where:   []repository.Cond{repository.Eq("family_id", familyID)},
		OrderBy: []repository.Order{{Column: "name"}},
	})
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// CreateCourse adds a course, optionally filed under one of the family's subjects
func (s *CourseworkService) CreateCourse(ctx context.Context, input CourseInput) (*models.Course, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperr.Validation("course title is required")
	}
	if input.SubjectID != nil {
		if _, err := s.repos.Subjects.SelectOne(ctx,
			repository.Eq("id", *input.SubjectID), repository.Eq("family_id", input.FamilyID)); err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.NotFound("subject %d not found", *input.SubjectID)
			}
			return nil, err
		}
	}

	course := &models.Course{
		FamilyID:    input.FamilyID,
		SubjectID:   input.SubjectID,
		Title:       input.Title,
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.now(),
	}
	if err := s.repos.Courses.Insert(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseworkService) ListCourses(ctx context.Context, familyID int64) ([]models.Course, error) {
	courses, err := s.repos.Courses.SelectMany(ctx, repository.Query{
		Where:   []repository.Cond{repository.Eq("family_id", familyID)},
		OrderBy: []repository.Order{{Column: "created_at"}, {Column: "id"}},
	})
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Assign gives one of the family's courses to one of its children
func (s *CourseworkService) Assign(ctx context.Context, input AssignmentInput) (*models.Assignment, error) {
	if input.RewardMinutes < 0 {
		return nil, apperr.Validation("reward minutes cannot be negative")
	}
	if _, err := s.repos.Courses.SelectOne(ctx,
		repository.Eq("id", input.CourseID), repository.Eq("family_id", input.FamilyID)); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("course %d not found", input.CourseID)
		}
		return nil, err
	}
	if _, err := s.household.GetChild(ctx, input.FamilyID, input.ChildID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CourseID:      input.CourseID,
		ChildID:       input.ChildID,
		FamilyID:      input.FamilyID,
		RewardMinutes: input.RewardMinutes,
		DueAt:         utcPtr(input.DueAt),
		CreatedAt:     s.now(),
	}
	if err := s.repos.Assignments.Insert(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListAssignments returns a child's assignments, open ones first
func (s *CourseworkService) ListAssignments(ctx context.Context, childID int64) ([]models.Assignment, error) {
	assignments, err := s.repos.Assignments.SelectMany(ctx, repository.Query{
		Where:   []repository.Cond{repository.Eq("child_id", childID)},
		OrderBy: []repository.Order{{Column: "completed"}, {Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
	})
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

// CompleteAssignment marks the child's assignment done and adds its reward to
// the child's earned time in the same transaction. Completing twice is a conflict.
func (s *CourseworkService) CompleteAssignment(ctx context.Context, childID, assignmentID int64) (*models.Assignment, *models.ChildSettings, error) {
	var (
		assignment *models.Assignment
		settings   *models.ChildSettings
	)
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		repos := s.repos.WithTx(tx)
		now := s.now()

		n, err := repos.Assignments.Update(ctx,
			[]repository.Cond{repository.Eq("completed", true), repository.Eq("completed_at", now)},
			repository.Eq("id", assignmentID),
			repository.Eq("child_id", childID),
			repository.Eq("completed", false),
		)
		if err != nil {
			return err
		}

		assignment, err = repos.Assignments.SelectOne(ctx, repository.Eq("id", assignmentID), repository.Eq("child_id", childID))
		if err != nil {
			if apperr.IsNotFound(err) {
				return apperr.NotFound("assignment %d not found", assignmentID)
			}
			return err
		}
		if n == 0 {
			return apperr.New(apperr.KindConflict, "assignment already completed")
		}

		current, err := childSettings(ctx, repos, childID)
		if err != nil {
			return err
		}
		current.TimeEarned += assignment.RewardMinutes
		settings, err = saveChildSettings(ctx, repos, *current, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"assignment_id":  assignmentID,
		"child_id":       childID,
		"reward_minutes": assignment.RewardMinutes,
	})
	s.logg.Info(logCtx, "assignment completed")
	return assignment, settings, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
