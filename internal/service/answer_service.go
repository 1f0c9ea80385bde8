package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerService is the answer ledger: it records a student's answer to one
// question of their attempt. Writes are column-scoped to a single
// AttemptQuestion row, so no cross-request locking is needed; resubmission is
// last-write-wins per (attempt, question).
type AnswerService interface {
	SubmitAnswer(linkToken, studentID string, questionID uint, answer string) error
}

type answerService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	aqRepo      repository.AttemptQuestionRepository
	qRepo       repository.QuestionRepository
	now         func() time.Time
}

func NewAnswerService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	aqRepo repository.AttemptQuestionRepository,
	qRepo repository.QuestionRepository,
) AnswerService {
	return &answerService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		aqRepo:      aqRepo,
		qRepo:       qRepo,
		now:         time.Now,
	}
}

func (s *answerService) SubmitAnswer(linkToken, studentID string, questionID uint, answer string) error {
	exam, err := s.examRepo.FindByLinkToken(linkToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return fmt.Errorf("load exam: %w", err)
	}

	attempt, err := s.attemptRepo.FindByExamAndStudent(exam.ID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("load attempt: %w", err)
	}
	if !attempt.InProgress() {
		return ErrAttemptClosed
	}
	if !s.now().Before(exam.EffectiveDeadline(attempt.StartTime)) {
		return ErrTimeExpired
	}

	aq, err := s.aqRepo.FindByAttemptAndQuestion(attempt.ID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotInAttempt
		}
		return fmt.Errorf("load attempt question: %w", err)
	}

	question, err := s.qRepo.FindByID(questionID)
	if err != nil {
		return fmt.Errorf("load question: %w", err)
	}

	aq.StudentAnswer = &answer
	if question.AutoGradable() {
		correct := false
		if opt := question.CorrectOption(); opt != nil {
			correct = strings.EqualFold(strings.TrimSpace(answer), opt.Label)
		}
		awarded := 0.0
		if correct {
			awarded = question.Score
		}
		aq.IsCorrect = &correct
		aq.AwardedScore = &awarded
	} else {
		// Essay answers keep the raw text; correctness and score stay unset
		// until an external grader reviews them.
		aq.IsCorrect = nil
		aq.AwardedScore = nil
	}

	if err := s.aqRepo.Update(aq); err != nil {
		return fmt.Errorf("store answer: %w", err)
	}
	log.Debug().Uint("attemptID", attempt.ID).Uint("questionID", questionID).Msg("Answer recorded")
	return nil
}
