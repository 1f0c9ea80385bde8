package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeSingleChoice = "single_choice"
	QuestionTypeTrueFalse    = "true_false"
	QuestionTypeEssay        = "essay"
)

type Question struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	ExamID     uint           `json:"exam_id" gorm:"not null;index"`
	Type       string         `json:"type" gorm:"not null"` // "single_choice", "true_false", "essay"
	Text       string         `json:"text" gorm:"type:text;not null"`
	Chapter    string         `json:"chapter" gorm:"index"`
	Difficulty string         `json:"difficulty"` // "easy", "medium", "hard"
	Score      float64        `json:"score" gorm:"not null"`
	Options    []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// AutoGradable reports whether correctness can be computed at submission time.
func (q *Question) AutoGradable() bool {
	return q.Type == QuestionTypeSingleChoice || q.Type == QuestionTypeTrueFalse
}

// CorrectOption returns the option marked correct, or nil for essay questions.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

type Option struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Label      string         `json:"label" gorm:"not null"` // "A", "B", ... or "true"/"false"
	Text       string         `json:"text" gorm:"type:text"`
	IsCorrect  bool           `json:"-" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
