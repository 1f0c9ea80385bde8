package dto

import "time"

// OptionCreateDTO is used within QuestionCreateDTO for admin exam creation.
type OptionCreateDTO struct {
	Label     string `json:"label" binding:"required"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateDTO is used within ExamCreateDTO for admin exam creation.
type QuestionCreateDTO struct {
	Type       string            `json:"type" binding:"required,oneof=single_choice true_false essay"`
	Text       string            `json:"text" binding:"required"`
	Chapter    string            `json:"chapter"`
	Difficulty string            `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Score      float64           `json:"score" binding:"required,gt=0"`
	Options    []OptionCreateDTO `json:"options" binding:"omitempty,dive"`
}

// ExamCreateDTO is for admin to create a new exam with all its questions.
type ExamCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	StartDate       time.Time           `json:"start_date" binding:"required"`
	EndDate         time.Time           `json:"end_date" binding:"required"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0"`
	QuestionCount   int                 `json:"question_count" binding:"omitempty,gte=0"`
	Shuffle         bool                `json:"shuffle"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// ExamUpdateDTO updates exam metadata. Rejected once any attempt exists.
type ExamUpdateDTO struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description,omitempty"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
	Active          bool      `json:"active"`
}

// ExamResponseDTO is the admin view of an exam, correct options included.
type ExamResponseDTO struct {
	ID              uint                  `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	LinkToken       string                `json:"link_token"`
	StartDate       time.Time             `json:"start_date"`
	EndDate         time.Time             `json:"end_date"`
	DurationMinutes int                   `json:"duration_minutes"`
	Active          bool                  `json:"active"`
	QuestionCount   int                   `json:"question_count"`
	Shuffle         bool                  `json:"shuffle"`
	Questions       []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ExamSummaryDTO is used when listing exams for the admin dashboard.
type ExamSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	LinkToken     string    `json:"link_token"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Active        bool      `json:"active"`
	QuestionCount int       `json:"question_count"`
	AttemptCount  int       `json:"attempt_count"`
}

// RosterImportResultDTO reports the outcome of a CSV roster upload.
type RosterImportResultDTO struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// AttemptResultDTO is one row in the admin results listing.
type AttemptResultDTO struct {
	AttemptID   uint       `json:"attempt_id"`
	StudentID   string     `json:"student_id"`
	DisplayName string     `json:"display_name,omitempty"`
	Status      string     `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Score       *float64   `json:"score,omitempty"`
}
