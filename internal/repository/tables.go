package repository

import (
	"database/sql"
	"time"

	"studyguard/internal/database"
	"studyguard/internal/models"
)

var Families = Table[models.Family]{
	Name:    "families",
	Columns: []string{"id", "name", "code", "created_at", "updated_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(f *models.Family) []any {
		return []any{f.ID, f.Name, f.Code, f.CreatedAt, f.UpdatedAt}
	},
	Scan: func(row Scanner, f *models.Family) error {
		if err := row.Scan(&f.ID, &f.Name, &f.Code, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return err
		}
		f.CreatedAt, f.UpdatedAt = f.CreatedAt.UTC(), f.UpdatedAt.UTC()
		return nil
	},
	SetKey: func(f *models.Family, id int64) { f.ID = id },
}

var Users = Table[models.User]{
	Name:    "users",
	Columns: []string{"id", "email", "name", "role", "family_id", "created_at", "updated_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(u *models.User) []any {
		return []any{u.ID, u.Email, u.Name, string(u.Role), u.FamilyID, u.CreatedAt, u.UpdatedAt}
	},
	Scan: func(row Scanner, u *models.User) error {
		var role string
		var familyID sql.NullInt64
		if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &familyID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		u.Role = models.Role(role)
		u.FamilyID = int64Ptr(familyID)
		u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
		return nil
	},
	SetKey: func(u *models.User, id int64) { u.ID = id },
}

var ChildSettings = Table[models.ChildSettings]{
	Name:    "child_settings",
	Columns: []string{"child_id", "is_locked", "timer_running", "time_earned", "time_used", "updated_at"},
	Key:     "child_id",
	Values: func(s *models.ChildSettings) []any {
		return []any{s.ChildID, s.IsLocked, s.TimerRunning, s.TimeEarned, s.TimeUsed, s.UpdatedAt}
	},
	Scan: func(row Scanner, s *models.ChildSettings) error {
		if err := row.Scan(&s.ChildID, &s.IsLocked, &s.TimerRunning, &s.TimeEarned, &s.TimeUsed, &s.UpdatedAt); err != nil {
			return err
		}
		s.UpdatedAt = s.UpdatedAt.UTC()
		return nil
	},
}

var BarrierStatus = Table[models.BarrierStatus]{
	Name:    "barrier_status",
	Columns: []string{"family_id", "is_active", "check_interval_seconds", "activated_at", "activated_by", "updated_at"},
	Key:     "family_id",
	Values: func(b *models.BarrierStatus) []any {
		return []any{b.FamilyID, b.IsActive, b.CheckIntervalSeconds, b.ActivatedAt, b.ActivatedBy, b.UpdatedAt}
	},
	Scan: func(row Scanner, b *models.BarrierStatus) error {
		var activatedAt sql.NullTime
		var activatedBy sql.NullInt64
		if err := row.Scan(&b.FamilyID, &b.IsActive, &b.CheckIntervalSeconds, &activatedAt, &activatedBy, &b.UpdatedAt); err != nil {
			return err
		}
		b.ActivatedAt = timePtr(activatedAt)
		b.ActivatedBy = int64Ptr(activatedBy)
		b.UpdatedAt = b.UpdatedAt.UTC()
		return nil
	},
}

var HeartbeatLog = Table[models.HeartbeatLog]{
	Name:    "heartbeat_log",
	Columns: []string{"id", "child_id", "family_id", "heartbeat_at", "status", "created_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(h *models.HeartbeatLog) []any {
		return []any{h.ID, h.ChildID, h.FamilyID, h.HeartbeatAt, h.Status, h.CreatedAt}
	},
	Scan: func(row Scanner, h *models.HeartbeatLog) error {
		if err := row.Scan(&h.ID, &h.ChildID, &h.FamilyID, &h.HeartbeatAt, &h.Status, &h.CreatedAt); err != nil {
			return err
		}
		h.HeartbeatAt, h.CreatedAt = h.HeartbeatAt.UTC(), h.CreatedAt.UTC()
		return nil
	},
	SetKey: func(h *models.HeartbeatLog, id int64) { h.ID = id },
}

var BarrierAlerts = Table[models.BarrierAlert]{
	Name:    "barrier_alerts",
	Columns: []string{"id", "child_id", "family_id", "alert_type", "alert_message", "triggered_at", "acknowledged", "acknowledged_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(a *models.BarrierAlert) []any {
		return []any{a.ID, a.ChildID, a.FamilyID, a.AlertType, a.AlertMessage, a.TriggeredAt, a.Acknowledged, a.AcknowledgedAt}
	},
	Scan: func(row Scanner, a *models.BarrierAlert) error {
		var acknowledgedAt sql.NullTime
		if err := row.Scan(&a.ID, &a.ChildID, &a.FamilyID, &a.AlertType, &a.AlertMessage, &a.TriggeredAt, &a.Acknowledged, &acknowledgedAt); err != nil {
			return err
		}
		a.TriggeredAt = a.TriggeredAt.UTC()
		a.AcknowledgedAt = timePtr(acknowledgedAt)
		return nil
	},
	SetKey: func(a *models.BarrierAlert, id int64) { a.ID = id },
}

var Subjects = Table[models.Subject]{
	Name:    "subjects",
	Columns: []string{"id", "family_id", "name", "created_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(s *models.Subject) []any {
		return []any{s.ID, s.FamilyID, s.Name, s.CreatedAt}
	},
	Scan: func(row Scanner, s *models.Subject) error {
		if err := row.Scan(&s.ID, &s.FamilyID, &s.Name, &s.CreatedAt); err != nil {
			return err
		}
		s.CreatedAt = s.CreatedAt.UTC()
		return nil
	},
	SetKey: func(s *models.Subject, id int64) { s.ID = id },
}

var Courses = Table[models.Course]{
	Name:    "courses",
	Columns: []string{"id", "family_id", "subject_id", "title", "description", "created_by", "created_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(c *models.Course) []any {
		return []any{c.ID, c.FamilyID, c.SubjectID, c.Title, c.Description, c.CreatedBy, c.CreatedAt}
	},
	Scan: func(row Scanner, c *models.Course) error {
		var subjectID, createdBy sql.NullInt64
		if err := row.Scan(&c.ID, &c.FamilyID, &subjectID, &c.Title, &c.Description, &createdBy, &c.CreatedAt); err != nil {
			return err
		}
		c.SubjectID = int64Ptr(subjectID)
		c.CreatedBy = int64Ptr(createdBy)
		c.CreatedAt = c.CreatedAt.UTC()
		return nil
	},
	SetKey: func(c *models.Course, id int64) { c.ID = id },
}

var Assignments = Table[models.Assignment]{
	Name:    "assignments",
	Columns: []string{"id", "course_id", "child_id", "family_id", "reward_minutes", "due_at", "completed", "completed_at", "created_at"},
	Key:     "id",
	AutoKey: true,
	Values: func(a *models.Assignment) []any {
		return []any{a.ID, a.CourseID, a.ChildID, a.FamilyID, a.RewardMinutes, a.DueAt, a.Completed, a.CompletedAt, a.CreatedAt}
	},
	Scan: func(row Scanner, a *models.Assignment) error {
		var dueAt, completedAt sql.NullTime
		if err := row.Scan(&a.ID, &a.CourseID, &a.ChildID, &a.FamilyID, &a.RewardMinutes, &dueAt, &a.Completed, &completedAt, &a.CreatedAt); err != nil {
			return err
		}
		a.DueAt = timePtr(dueAt)
		a.CompletedAt = timePtr(completedAt)
		a.CreatedAt = a.CreatedAt.UTC()
		return nil
	},
	SetKey: func(a *models.Assignment, id int64) { a.ID = id },
}

// Repositories bundles one store per collection over a shared connection.
type Repositories struct {
	Families      *Store[models.Family]
	Users         *Store[models.User]
	ChildSettings *Store[models.ChildSettings]
	BarrierStatus *Store[models.BarrierStatus]
	Heartbeats    *Store[models.HeartbeatLog]
	Alerts        *Store[models.BarrierAlert]
	Subjects      *Store[models.Subject]
	Courses       *Store[models.Course]
	Assignments   *Store[models.Assignment]
}

func New(db database.Querier) *Repositories {
	return &Repositories{
		Families:      NewStore(db, Families),
		Users:         NewStore(db, Users),
		ChildSettings: NewStore(db, ChildSettings),
		BarrierStatus: NewStore(db, BarrierStatus),
		Heartbeats:    NewStore(db, HeartbeatLog),
		Alerts:        NewStore(db, BarrierAlerts),
		Subjects:      NewStore(db, Subjects),
		Courses:       NewStore(db, Courses),
		Assignments:   NewStore(db, Assignments),
	}
}

// WithTx rebinds every store to tx.
func (r *Repositories) WithTx(tx database.Querier) *Repositories {
	return New(tx)
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
