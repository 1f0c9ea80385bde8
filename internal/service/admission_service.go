package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// AttemptHandle is what a student gets back from admission: the attempt row
// and its frozen, ordered question set.
type AttemptHandle struct {
	Exam      *model.Exam
	Attempt   *model.Attempt
	Questions []model.AttemptQuestion
}

// AdmissionService is the serialization point of the attempt lifecycle.
//
// Admission protocol, in order:
//  1. A singleflight group keyed by (exam, student) collapses concurrent
//     admissions for the same pair into one execution; every caller of the
//     flight observes the winner's result, never an error or a duplicate.
//  2. Inside the flight, eligibility is re-checked (the window may have
//     closed between validate-access and admission; admission fails closed),
//     then one transaction double-checks for an existing attempt and creates
//     the attempt row together with its materialized question set.
//  3. The composite unique index on attempts(exam_id, student_id) backstops
//     the invariant across processes: a loser that still hits the index
//     re-reads the winner's attempt and returns it.
type AdmissionService interface {
	Admit(linkToken, studentID, email string) (*AttemptHandle, error)
}

type admissionService struct {
	eligibility EligibilityService
	attemptRepo repository.AttemptRepository
	aqRepo      repository.AttemptQuestionRepository
	questionSet QuestionSetService
	db          *gorm.DB
	group       singleflight.Group
	now         func() time.Time
}

func NewAdmissionService(
	eligibility EligibilityService,
	attemptRepo repository.AttemptRepository,
	aqRepo repository.AttemptQuestionRepository,
	questionSet QuestionSetService,
	db *gorm.DB,
) AdmissionService {
	return &admissionService{
		eligibility: eligibility,
		attemptRepo: attemptRepo,
		aqRepo:      aqRepo,
		questionSet: questionSet,
		db:          db,
		now:         time.Now,
	}
}

// errLostAdmissionRace marks the double-check finding an attempt that
// appeared after the flight started. Resolved internally, never user-visible.
var errLostAdmissionRace = errors.New("lost admission race")

func (s *admissionService) Admit(linkToken, studentID, email string) (*AttemptHandle, error) {
	key := linkToken + ":" + studentID
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.admit(linkToken, studentID, email)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AttemptHandle), nil
}

func (s *admissionService) admit(linkToken, studentID, email string) (*AttemptHandle, error) {
	exam, _, err := s.eligibility.CheckAccess(linkToken, studentID, email)
	switch {
	case err == nil:
		// First admission for this pair; fall through to create.
	case errors.Is(err, ErrAlreadyAttempted):
		return s.resume(exam, studentID)
	default:
		return nil, err
	}

	var attempt model.Attempt
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Attempt
		findErr := tx.Where("exam_id = ? AND student_id = ?", exam.ID, studentID).First(&existing).Error
		if findErr == nil {
			return errLostAdmissionRace
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("double-check existing attempt: %w", findErr)
		}

		attempt = model.Attempt{
			ExamID:    exam.ID,
			StudentID: studentID,
			Status:    model.AttemptStatusInProgress,
			StartTime: s.now(),
		}
		if createErr := tx.Create(&attempt).Error; createErr != nil {
			return createErr
		}
		if _, matErr := s.questionSet.Materialize(tx, exam, attempt.ID); matErr != nil {
			return matErr
		}
		return nil
	})
	if txErr != nil {
		// A concurrent admission from another process slipped past the
		// double-check and won at the unique index. Observe its result.
		if errors.Is(txErr, errLostAdmissionRace) || errors.Is(txErr, gorm.ErrDuplicatedKey) {
			log.Info().Uint("examID", exam.ID).Str("studentID", studentID).Msg("Admission race resolved to existing attempt")
			return s.resume(exam, studentID)
		}
		return nil, fmt.Errorf("admission transaction: %w", txErr)
	}

	questions, err := s.aqRepo.FindAllByAttempt(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load materialized question set: %w", err)
	}
	log.Info().Uint("examID", exam.ID).Str("studentID", studentID).Uint("attemptID", attempt.ID).
		Int("questions", len(questions)).Msg("Attempt admitted")
	return &AttemptHandle{Exam: exam, Attempt: &attempt, Questions: questions}, nil
}

// resume returns the existing attempt's frozen question set for idempotent
// re-entry (page reloads, duplicate clicks). Completed attempts do not
// re-open.
func (s *admissionService) resume(exam *model.Exam, studentID string) (*AttemptHandle, error) {
	attempt, err := s.attemptRepo.FindByExamAndStudent(exam.ID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt for resume: %w", err)
	}
	if attempt.Completed() {
		return nil, ErrAlreadyAttempted
	}
	questions, err := s.aqRepo.FindAllByAttempt(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load question set for resume: %w", err)
	}
	return &AttemptHandle{Exam: exam, Attempt: attempt, Questions: questions}, nil
}
