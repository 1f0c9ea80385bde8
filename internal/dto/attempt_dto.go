package dto

import "time"

// ValidateAccessDTO is the request body for the validate-access endpoint.
type ValidateAccessDTO struct {
	StudentID string `json:"student_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// ValidateAccessResponseDTO tells the client whether it may start the exam,
// or that it should redirect to the results view instead.
type ValidateAccessResponseDTO struct {
	Eligible    bool   `json:"eligible"`
	ExamTitle   string `json:"exam_title,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Redirect    bool   `json:"redirect,omitempty"` // true when the exam already ended
}

// OptionResponseDTO deliberately omits correctness.
type OptionResponseDTO struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
}

// QuestionResponseDTO is a question as shown to a student inside an attempt.
type QuestionResponseDTO struct {
	ID         uint                `json:"id"`
	Type       string              `json:"type"`
	Text       string              `json:"text"`
	Chapter    string              `json:"chapter,omitempty"`
	Difficulty string              `json:"difficulty,omitempty"`
	Score      float64             `json:"score"`
	Options    []OptionResponseDTO `json:"options,omitempty"`
}

// AttemptQuestionDTO is one slot of the frozen question set, including the
// student's current answer so reloads restore state.
type AttemptQuestionDTO struct {
	OrderIndex    int                 `json:"order_index"`
	Question      QuestionResponseDTO `json:"question"`
	StudentAnswer *string             `json:"student_answer,omitempty"`
}

// AttemptHandleDTO is returned by the get-questions endpoint: the admitted
// attempt plus its frozen ordered question set.
type AttemptHandleDTO struct {
	AttemptID uint                 `json:"attempt_id"`
	ExamID    uint                 `json:"exam_id"`
	StudentID string               `json:"student_id"`
	Status    string               `json:"status"`
	StartTime time.Time            `json:"start_time"`
	Deadline  time.Time            `json:"deadline"`
	Questions []AttemptQuestionDTO `json:"questions"`
}

// SubmitAnswerDTO records/overwrites a student's answer to one question.
type SubmitAnswerDTO struct {
	StudentID  string `json:"student_id" binding:"required"`
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitExamDTO finalizes the attempt.
type SubmitExamDTO struct {
	StudentID string `json:"student_id" binding:"required"`
}

// ChapterBreakdownDTO aggregates per-chapter grading results.
type ChapterBreakdownDTO struct {
	Chapter      string  `json:"chapter"`
	Correct      int     `json:"correct"`
	Incorrect    int     `json:"incorrect"`
	Unanswered   int     `json:"unanswered"`
	AwardedScore float64 `json:"awarded_score"`
	MaxScore     float64 `json:"max_score"`
}

// FinalizeResponseDTO is the graded, immutable outcome of an attempt.
type FinalizeResponseDTO struct {
	AttemptID uint                  `json:"attempt_id"`
	Status    string                `json:"status"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Score     float64               `json:"score"`
	Chapters  []ChapterBreakdownDTO `json:"chapters,omitempty"`
}
