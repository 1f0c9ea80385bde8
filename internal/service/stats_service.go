package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/Proctorly/internal/cache"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatsService is a thin read-only projection over finalized attempts. Its
// one write-ish behavior: an in_progress attempt whose deadline has passed is
// auto-finalized on the way through, so expired attempts still end up graded.
type StatsService interface {
	GetStats(linkToken, studentID string) (*dto.StatsResponseDTO, error)
}

type statsService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	grading     GradingService
	cache       *cache.Cache
	now         func() time.Time
}

func NewStatsService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	grading GradingService,
	statsCache *cache.Cache,
) StatsService {
	return &statsService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		grading:     grading,
		cache:       statsCache,
		now:         time.Now,
	}
}

func (s *statsService) GetStats(linkToken, studentID string) (*dto.StatsResponseDTO, error) {
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

	now := s.now()
	if attempt.InProgress() {
		if now.Before(exam.EffectiveDeadline(attempt.StartTime)) {
			return nil, ErrResultsNotAvailable
		}
		// The clock ran out on this attempt; grade whatever was recorded.
		if _, err := s.grading.FinalizeAttempt(attempt.ID); err != nil {
			return nil, fmt.Errorf("auto-finalize expired attempt: %w", err)
		}
		attempt, err = s.attemptRepo.FindByID(attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("reload finalized attempt: %w", err)
		}
	}

	student, err := s.grading.FinalizeAttempt(attempt.ID) // idempotent read of the stored result
	if err != nil {
		return nil, err
	}

	cohort, err := s.cohortStats(exam.ID)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponseDTO{Student: *student, Cohort: *cohort}, nil
}

func (s *statsService) cohortStats(examID uint) (*dto.CohortStatsDTO, error) {
	ctx := context.Background()
	key := fmt.Sprintf("stats:exam:%d", examID)

	var cached dto.CohortStatsDTO
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Msg("Cohort stats cache read failed, falling back to store")
	} else if hit {
		return &cached, nil
	}

	attempts, err := s.attemptRepo.FindCompletedByExam(examID)
	if err != nil {
		return nil, fmt.Errorf("load completed attempts: %w", err)
	}

	stats := dto.CohortStatsDTO{ExamID: examID, CompletedCount: len(attempts)}
	total := 0.0
	for _, a := range attempts {
		if a.Score == nil {
			continue
		}
		total += *a.Score
		if *a.Score > stats.HighestScore {
			stats.HighestScore = *a.Score
		}
	}
	if len(attempts) > 0 {
		stats.AverageScore = total / float64(len(attempts))
	}

	if err := s.cache.SetJSON(ctx, key, stats); err != nil {
		log.Warn().Err(err).Uint("examID", examID).Msg("Cohort stats cache write failed")
	}
	return &stats, nil
}
