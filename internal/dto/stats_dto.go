package dto

// CohortStatsDTO aggregates finalized attempts across the whole roster.
type CohortStatsDTO struct {
	ExamID         uint    `json:"exam_id"`
	CompletedCount int     `json:"completed_count"`
	AverageScore   float64 `json:"average_score"`
	HighestScore   float64 `json:"highest_score"`
}

// StatsResponseDTO combines the student's own finalized result with cohort
// aggregates for the exam.
type StatsResponseDTO struct {
	Student FinalizeResponseDTO `json:"student"`
	Cohort  CohortStatsDTO      `json:"cohort"`
}
