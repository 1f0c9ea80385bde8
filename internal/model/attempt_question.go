package model

import (
	"time"

	"gorm.io/gorm"
)

// AttemptQuestion is one question slot inside an attempt's frozen set.
// The set and its order are materialized exactly once when the attempt is
// created; only the answer columns change afterwards.
type AttemptQuestion struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	AttemptID     uint           `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID    uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Question      Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	OrderIndex    int            `json:"order_index" gorm:"not null"`
	StudentAnswer *string        `json:"student_answer,omitempty" gorm:"type:text"`
	IsCorrect     *bool          `json:"is_correct,omitempty"`
	AwardedScore  *float64       `json:"awarded_score,omitempty"`
	Feedback      string         `json:"feedback,omitempty" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
