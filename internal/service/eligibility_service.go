package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EligibilityService decides whether a (student, exam) pair may begin or
// continue an attempt. It is a pure read path: no side effects, safe to
// re-evaluate from any number of concurrent callers.
type EligibilityService interface {
	// CheckAccess evaluates the admission rules in their fixed order and
	// returns the exam and roster entry on success. The rule order is part of
	// the contract: the end-of-window check dominates the already-attempted
	// check, so a late student is told the exam ended (and can fetch results)
	// rather than that they already took it.
	CheckAccess(linkToken, studentID, email string) (*model.Exam, *model.AllowedStudent, error)
}

type eligibilityService struct {
	examRepo    repository.ExamRepository
	rosterRepo  repository.RosterRepository
	attemptRepo repository.AttemptRepository
	now         func() time.Time
}

func NewEligibilityService(
	examRepo repository.ExamRepository,
	rosterRepo repository.RosterRepository,
	attemptRepo repository.AttemptRepository,
) EligibilityService {
	return &eligibilityService{
		examRepo:    examRepo,
		rosterRepo:  rosterRepo,
		attemptRepo: attemptRepo,
		now:         time.Now,
	}
}

func (s *eligibilityService) CheckAccess(linkToken, studentID, email string) (*model.Exam, *model.AllowedStudent, error) {
	exam, err := s.examRepo.FindByLinkToken(linkToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrExamNotFound
		}
		return nil, nil, fmt.Errorf("load exam by link token: %w", err)
	}
	if !exam.Active {
		return nil, nil, ErrExamNotFound
	}

	entry, err := s.rosterRepo.FindByExamAndStudent(exam.ID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotInRoster
		}
		return nil, nil, fmt.Errorf("load roster entry: %w", err)
	}
	if !strings.EqualFold(entry.Email, email) {
		log.Warn().Uint("examID", exam.ID).Str("studentID", studentID).Msg("Roster email mismatch on access check")
		return nil, nil, ErrNotInRoster
	}

	now := s.now()

	// End-of-window check comes before the attempt-existence check so a
	// student who finished (or never started) is redirected to results once
	// the window closes.
	if !now.Before(exam.EndDate) {
		return exam, entry, ErrExamEnded
	}

	if _, err := s.attemptRepo.FindByExamAndStudent(exam.ID, studentID); err == nil {
		return exam, entry, ErrAlreadyAttempted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("load existing attempt: %w", err)
	}

	if now.Before(exam.StartDate) {
		return exam, entry, ErrExamNotStarted
	}

	return exam, entry, nil
}
