package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GradingService closes an attempt and computes its terminal score. The score
// is recomputed from the stored AttemptQuestion rows, never trusted from the
// client. Finalize is idempotent: the first call performs the single
// in_progress -> completed transition, later calls return the stored result
// without mutation.
type GradingService interface {
	Finalize(linkToken, studentID string) (*dto.FinalizeResponseDTO, error)
	FinalizeAttempt(attemptID uint) (*dto.FinalizeResponseDTO, error)
}

type gradingService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	db          *gorm.DB
	now         func() time.Time
}

func NewGradingService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	db *gorm.DB,
) GradingService {
	return &gradingService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		db:          db,
		now:         time.Now,
	}
}

func (s *gradingService) Finalize(linkToken, studentID string) (*dto.FinalizeResponseDTO, error) {
	exam, err := s.examRepo.FindByLinkToken(linkToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	attempt, err := s.attemptRepo.FindByExamAndStudent(exam.ID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return s.FinalizeAttempt(attempt.ID)
}

func (s *gradingService) FinalizeAttempt(attemptID uint) (*dto.FinalizeResponseDTO, error) {
	var result *dto.FinalizeResponseDTO
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var attempt model.Attempt
		if err := tx.First(&attempt, attemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttemptNotFound
			}
			return fmt.Errorf("load attempt: %w", err)
		}

		var rows []model.AttemptQuestion
		if err := tx.Preload("Question").Where("attempt_id = ?", attempt.ID).
			Order("order_index ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("load attempt questions: %w", err)
		}

		if attempt.Completed() {
			// Idempotent read: the stored score is authoritative, no re-grade.
			result = buildFinalizeResponse(&attempt, rows)
			return nil
		}

		score := sumAwardedScores(rows)
		endTime := s.now()

		// Conditional update makes the transition race-safe: only one caller
		// can move the row out of in_progress.
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptStatusInProgress).
			Updates(map[string]interface{}{
				"status":   model.AttemptStatusCompleted,
				"end_time": endTime,
				"score":    score,
			})
		if res.Error != nil {
			return fmt.Errorf("finalize attempt: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Another request finalized first; return its stored result.
			if err := tx.First(&attempt, attempt.ID).Error; err != nil {
				return fmt.Errorf("reload finalized attempt: %w", err)
			}
			result = buildFinalizeResponse(&attempt, rows)
			return nil
		}

		attempt.Status = model.AttemptStatusCompleted
		attempt.EndTime = &endTime
		attempt.Score = &score
		result = buildFinalizeResponse(&attempt, rows)
		log.Info().Uint("attemptID", attempt.ID).Float64("score", score).Msg("Attempt finalized")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func sumAwardedScores(rows []model.AttemptQuestion) float64 {
	total := 0.0
	for _, r := range rows {
		if r.AwardedScore != nil {
			total += *r.AwardedScore
		}
	}
	return total
}

func buildFinalizeResponse(attempt *model.Attempt, rows []model.AttemptQuestion) *dto.FinalizeResponseDTO {
	resp := &dto.FinalizeResponseDTO{
		AttemptID: attempt.ID,
		Status:    attempt.Status,
		EndTime:   attempt.EndTime,
		Chapters:  chapterBreakdown(rows),
	}
	if attempt.Score != nil {
		resp.Score = *attempt.Score
	}
	return resp
}

func chapterBreakdown(rows []model.AttemptQuestion) []dto.ChapterBreakdownDTO {
	byChapter := make(map[string]*dto.ChapterBreakdownDTO)
	for _, r := range rows {
		ch := r.Question.Chapter
		agg, ok := byChapter[ch]
		if !ok {
			agg = &dto.ChapterBreakdownDTO{Chapter: ch}
			byChapter[ch] = agg
		}
		agg.MaxScore += r.Question.Score
		switch {
		case r.StudentAnswer == nil:
			agg.Unanswered++
		case r.IsCorrect != nil && *r.IsCorrect:
			agg.Correct++
		default:
			agg.Incorrect++
		}
		if r.AwardedScore != nil {
			agg.AwardedScore += *r.AwardedScore
		}
	}

	chapters := make([]dto.ChapterBreakdownDTO, 0, len(byChapter))
	for _, agg := range byChapter {
		chapters = append(chapters, *agg)
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Chapter < chapters[j].Chapter })
	return chapters
}
