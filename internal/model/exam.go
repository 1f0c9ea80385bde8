package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	LinkToken       string         `json:"link_token" gorm:"not null;uniqueIndex"`
	StartDate       time.Time      `json:"start_date" gorm:"not null"`
	EndDate         time.Time      `json:"end_date" gorm:"not null"` // exclusive upper bound
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Active          bool           `json:"active" gorm:"not null;default:true"`
	QuestionCount   int            `json:"question_count"` // 0 = use the whole pool
	Shuffle         bool           `json:"shuffle"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveDeadline is the instant after which answers for an attempt started
// at startTime are no longer accepted: the earlier of the exam's end date and
// the per-attempt duration limit.
func (e *Exam) EffectiveDeadline(startTime time.Time) time.Time {
	deadline := e.EndDate
	if e.DurationMinutes > 0 {
		byDuration := startTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
		if byDuration.Before(deadline) {
			deadline = byDuration
		}
	}
	return deadline
}
