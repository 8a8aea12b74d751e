package project

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidProject = errors.New("invalid project")

// Project is a monthly velocity summary.
type Project struct {
	ID                 int64      `json:"id"`
	PeriodMonth        time.Time  `json:"periodMonth"`
	VelocityPt         int        `json:"velocityPt"`
	ProjectName        string     `json:"projectName"`
	ProjectDescription string     `json:"projectDescription"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	DeletedAt          *time.Time `json:"deletedAt"`
}

type NewProject struct {
	PeriodMonth        time.Time
	VelocityPt         int
	ProjectName        string
	ProjectDescription string
}

func (p NewProject) Validate() error {
	if p.PeriodMonth.IsZero() {
		return fmt.Errorf("%w: period month is required", ErrInvalidProject)
	}
	if strings.TrimSpace(p.ProjectName) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidProject)
	}
	if strings.TrimSpace(p.ProjectDescription) == "" {
		return fmt.Errorf("%w: project description is required", ErrInvalidProject)
	}
	return nil
}

var periodLayouts = []string{time.RFC3339, "2006-01-02", "2006-01"}

// ParsePeriodMonth accepts an RFC 3339 timestamp, a date or a year-month.
func ParsePeriodMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: period month %q is not a date", ErrInvalidProject, s)
}
