package model

import (
	"time"

	"gorm.io/gorm"
)

// AllowedStudent is one roster entry. An attempt may only ever be created for
// a (exam, student) pair present here with a matching email.
type AllowedStudent struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	ExamID      uint           `json:"exam_id" gorm:"not null;uniqueIndex:idx_roster_exam_student"`
	StudentID   string         `json:"student_id" gorm:"not null;uniqueIndex:idx_roster_exam_student"`
	Email       string         `json:"email" gorm:"not null"`
	DisplayName string         `json:"display_name"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
