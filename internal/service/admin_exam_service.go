package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminExamService interface {
	CreateExam(req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error)
	UpdateExam(examID uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, error)
	GetExam(examID uint) (*dto.ExamResponseDTO, error)
	ListExams() ([]dto.ExamSummaryDTO, error)
	ListResults(examID uint) ([]dto.AttemptResultDTO, error)
}

type adminExamService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	rosterRepo  repository.RosterRepository
}

func NewAdminExamService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	rosterRepo repository.RosterRepository,
) AdminExamService {
	return &adminExamService{examRepo: examRepo, attemptRepo: attemptRepo, rosterRepo: rosterRepo}
}

func (s *adminExamService) CreateExam(req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("end_date must be after start_date")
	}
	if req.QuestionCount > len(req.Questions) {
		return nil, fmt.Errorf("question_count %d exceeds number of provided questions %d", req.QuestionCount, len(req.Questions))
	}

	var questions []model.Question
	for i, qDto := range req.Questions {
		if err := validateQuestion(i, qDto); err != nil {
			return nil, err
		}
		var questionModel model.Question
		copier.Copy(&questionModel, &qDto)
		questions = append(questions, questionModel)
	}

	examModel := model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		LinkToken:       uuid.NewString(),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
		QuestionCount:   req.QuestionCount,
		Shuffle:         req.Shuffle,
		Questions:       questions,
	}

	if err := s.examRepo.Create(&examModel); err != nil {
		log.Error().Err(err).Msg("Failed to create exam in database")
		return nil, fmt.Errorf("database error creating exam: %w", err)
	}

	return s.GetExam(examModel.ID)
}

func validateQuestion(idx int, q dto.QuestionCreateDTO) error {
	switch q.Type {
	case model.QuestionTypeSingleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: single_choice requires at least 2 options", idx+1)
		}
	case model.QuestionTypeTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("question %d: true_false requires exactly 2 options", idx+1)
		}
	case model.QuestionTypeEssay:
		if len(q.Options) != 0 {
			return fmt.Errorf("question %d: essay questions take no options", idx+1)
		}
		return nil
	}

	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %d: exactly one option must be marked correct, got %d", idx+1, correct)
	}
	return nil
}

// UpdateExam changes exam metadata. An exam becomes immutable as soon as the
// first attempt exists, since attempts freeze against its window and pool.
func (s *adminExamService) UpdateExam(examID uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	hasAttempts, err := s.examRepo.HasAttempts(examID)
	if err != nil {
		return nil, fmt.Errorf("check exam attempts: %w", err)
	}
	if hasAttempts {
		return nil, ErrExamImmutable
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("end_date must be after start_date")
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.StartDate = req.StartDate
	exam.EndDate = req.EndDate
	exam.DurationMinutes = req.DurationMinutes
	exam.Active = req.Active
	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return s.GetExam(examID)
}

func (s *adminExamService) GetExam(examID uint) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	var resp dto.ExamResponseDTO
	if err := copier.Copy(&resp, exam); err != nil {
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	return &resp, nil
}

func (s *adminExamService) ListExams() ([]dto.ExamSummaryDTO, error) {
	examsWithCount, err := s.examRepo.FindAllWithAttemptCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams with attempt count")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	var dtos []dto.ExamSummaryDTO
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:            ewc.Exam.ID,
			Title:         ewc.Exam.Title,
			LinkToken:     ewc.Exam.LinkToken,
			StartDate:     ewc.Exam.StartDate,
			EndDate:       ewc.Exam.EndDate,
			Active:        ewc.Exam.Active,
			QuestionCount: ewc.Exam.QuestionCount,
			AttemptCount:  ewc.AttemptCount,
		})
	}
	return dtos, nil
}

func (s *adminExamService) ListResults(examID uint) ([]dto.AttemptResultDTO, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	attempts, err := s.attemptRepo.FindAllByExam(examID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	roster, err := s.rosterRepo.FindByExamID(examID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	names := make(map[string]string, len(roster))
	for _, entry := range roster {
		names[entry.StudentID] = entry.DisplayName
	}

	results := make([]dto.AttemptResultDTO, 0, len(attempts))
	for _, a := range attempts {
		results = append(results, dto.AttemptResultDTO{
			AttemptID:   a.ID,
			StudentID:   a.StudentID,
			DisplayName: names[a.StudentID],
			Status:      a.Status,
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Score:       a.Score,
		})
	}
	return results, nil
}
