package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// Attempt is one student's single permitted run through an exam.
//
// The state machine is two-state: absence of a row means "not started";
// in_progress -> completed is the only transition and rows are never deleted.
// The composite unique index is the durable backstop for the at-most-one
// attempt invariant: whatever happens in-process, the store refuses a second
// row for the same (exam_id, student_id).
type Attempt struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	ExamID    uint              `json:"exam_id" gorm:"not null;uniqueIndex:idx_attempt_exam_student"`
	Exam      Exam              `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	StudentID string            `json:"student_id" gorm:"not null;uniqueIndex:idx_attempt_exam_student"`
	Status    string            `json:"status" gorm:"not null;default:'in_progress'"`
	StartTime time.Time         `json:"start_time" gorm:"not null"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Score     *float64          `json:"score,omitempty"`
	Questions []AttemptQuestion `json:"questions,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (a *Attempt) InProgress() bool { return a.Status == AttemptStatusInProgress }
func (a *Attempt) Completed() bool  { return a.Status == AttemptStatusCompleted }
