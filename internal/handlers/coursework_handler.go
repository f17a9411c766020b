package handlers

import (
	"net/http"

	"studyguard/internal/logger"
	"studyguard/internal/models"
	"studyguard/internal/service"
	"studyguard/internal/validation"
)

// CourseworkHandler handles subjects, courses and assignments
type CourseworkHandler struct {
	coursework *service.CourseworkService
	household  *service.HouseholdService
	logg       *logger.Logger
}

// NewCourseworkHandler creates a new coursework handler
func NewCourseworkHandler(coursework *service.CourseworkService, household *service.HouseholdService, logg *logger.Logger) *CourseworkHandler {
	return &CourseworkHandler{coursework: coursework, household: household, logg: logg}
}

type createSubjectRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type completeAssignmentResponse struct {
	Assignment *models.Assignment    `json:"assignment"`
	Settings   *models.ChildSettings `json:"settings"`
}

func (h *CourseworkHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req createSubjectRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	subject, err := h.coursework.CreateSubject(r.Context(), claims.FamilyID, req.Name)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, subject)
}

func (h *CourseworkHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	subjects, err := h.coursework.ListSubjects(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

func (h *CourseworkHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var input service.CourseInput
	if err := validation.DecodeJSON(r, &input); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	userID := claims.UserID
	input.FamilyID = claims.FamilyID
	input.CreatedBy = &userID

	course, err := h.coursework.CreateCourse(r.Context(), input)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, course)
}

func (h *CourseworkHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	courses, err := h.coursework.ListCourses(r.Context(), claims.FamilyID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

// Assign gives a course to a child of the caller's family
func (h *CourseworkHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var input service.AssignmentInput
	if err := validation.DecodeJSON(r, &input); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	input.FamilyID = claims.FamilyID

	assignment, err := h.coursework.Assign(r.Context(), input)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

// ChildAssignments lists the assignments of a child in the caller's family
func (h *CourseworkHandler) ChildAssignments(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, err := pathID(r, "id")
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	if _, err := h.household.GetChild(r.Context(), claims.FamilyID, childID); err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	h.listAssignments(w, r, childID)
}

// MyAssignments lists the calling child's assignments
func (h *CourseworkHandler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	h.listAssignments(w, r, ClaimsFromContext(r.Context()).UserID)
}

func (h *CourseworkHandler) listAssignments(w http.ResponseWriter, r *http.Request, childID int64) {
	assignments, err := h.coursework.ListAssignments(r.Context(), childID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignments)
}

// Complete marks one of the calling child's assignments done and credits its reward
func (h *CourseworkHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	assignmentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}

	assignment, settings, err := h.coursework.CompleteAssignment(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		respondWithError(r.Context(), h.logg, w, err)
		return
	}
	respondJSON(w, http.StatusOK, completeAssignmentResponse{Assignment: assignment, Settings: settings})
}
