package service

import (
	"testing"
	"time"

	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAdminForTest(db *gorm.DB) AdminExamService {
	return NewAdminExamService(
		repository.NewExamRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewRosterRepository(db),
	)
}

func validExamCreate() dto.ExamCreateDTO {
	return dto.ExamCreateDTO{
		Title:           "Geometry Final",
		StartDate:       time.Now().Add(time.Hour),
		EndDate:         time.Now().Add(3 * time.Hour),
		DurationMinutes: 60,
		Questions: []dto.QuestionCreateDTO{
			{
				Type: model.QuestionTypeSingleChoice, Text: "Angles of a triangle sum to?", Score: 2,
				Options: []dto.OptionCreateDTO{
					{Label: "A", Text: "90"},
					{Label: "B", Text: "180", IsCorrect: true},
				},
			},
			{
				Type: model.QuestionTypeEssay, Text: "Prove the Pythagorean theorem.", Score: 5,
			},
		},
	}
}

func TestCreateExamGeneratesLinkToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminForTest(db)

	resp, err := svc.CreateExam(validExamCreate())
	require.NoError(t, err)
	require.NotEmpty(t, resp.LinkToken)
	require.True(t, resp.Active)
	require.Len(t, resp.Questions, 2)
	require.Len(t, resp.Questions[0].Options, 2)
}

func TestCreateExamRejectsInvertedWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminForTest(db)

	req := validExamCreate()
	req.EndDate = req.StartDate.Add(-time.Hour)
	_, err := svc.CreateExam(req)
	require.Error(t, err)
}

func TestCreateExamRejectsOversizedQuestionCount(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminForTest(db)

	req := validExamCreate()
	req.QuestionCount = 5
	_, err := svc.CreateExam(req)
	require.Error(t, err)
}

func TestCreateExamValidatesOptions(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminForTest(db)

	req := validExamCreate()
	req.Questions[0].Options = req.Questions[0].Options[:1]
	_, err := svc.CreateExam(req)
	require.Error(t, err, "single_choice needs at least two options")

	req = validExamCreate()
	req.Questions[0].Options[0].IsCorrect = true
	_, err = svc.CreateExam(req)
	require.Error(t, err, "exactly one option may be correct")

	req = validExamCreate()
	req.Questions[1].Options = []dto.OptionCreateDTO{{Label: "A"}}
	_, err = svc.CreateExam(req)
	require.Error(t, err, "essay questions take no options")
}

func TestUpdateExamBeforeAnyAttempt(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	svc := newAdminForTest(db)

	resp, err := svc.UpdateExam(exam.ID, dto.ExamUpdateDTO{
		Title:           "Renamed Midterm",
		StartDate:       exam.StartDate,
		EndDate:         exam.EndDate.Add(time.Hour),
		DurationMinutes: 45,
		Active:          true,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed Midterm", resp.Title)
	require.Equal(t, 45, resp.DurationMinutes)
}

func TestUpdateExamImmutableOnceAttempted(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedAttempt(t, db, exam, "s1")
	svc := newAdminForTest(db)

	_, err := svc.UpdateExam(exam.ID, dto.ExamUpdateDTO{
		Title:           "Too Late",
		StartDate:       exam.StartDate,
		EndDate:         exam.EndDate,
		DurationMinutes: exam.DurationMinutes,
		Active:          true,
	})
	require.ErrorIs(t, err, ErrExamImmutable)
}

func TestListExamsReportsAttemptCounts(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedAttempt(t, db, exam, "s1")
	seedAttempt(t, db, exam, "s2")
	svc := newAdminForTest(db)

	exams, err := svc.ListExams()
	require.NoError(t, err)
	require.Len(t, exams, 1)
	require.Equal(t, exam.ID, exams[0].ID)
	require.Equal(t, 2, exams[0].AttemptCount)
}

func TestListResultsIncludesRosterNames(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	seedAttempt(t, db, exam, "s1")
	svc := newAdminForTest(db)

	results, err := svc.ListResults(exam.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "s1", results[0].StudentID)
	require.Equal(t, "Student s1", results[0].DisplayName)
	require.Equal(t, model.AttemptStatusInProgress, results[0].Status)
}

func TestListResultsUnknownExam(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminForTest(db)

	_, err := svc.ListResults(9999)
	require.ErrorIs(t, err, ErrExamNotFound)
}
