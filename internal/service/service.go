package service

import (
	"time"

	"studyguard/internal/database"
	"studyguard/internal/logger"
	"studyguard/internal/repository"
)

// Deps carries the collaborators every service is built from.
type Deps struct {
	DB     *database.DB
	Repos  *repository.Repositories
	Logger *logger.Logger
}

func (d Deps) logger() *logger.Logger {
	if d.Logger == nil {
		return logger.Nop()
	}
	return d.Logger
}

func utcNow() time.Time {
	return time.Now().UTC()
}
