package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.Option{},
		&model.AllowedStudent{},
		&model.Attempt{},
		&model.AttemptQuestion{},
	))
	return db
}

// seedExam creates an open exam with a small mixed question pool:
// one single_choice (2 pts), one true_false (1 pt), one essay (5 pts).
func seedExam(t *testing.T, db *gorm.DB, mutate func(*model.Exam)) *model.Exam {
	t.Helper()
	exam := &model.Exam{
		Title:           "Algebra Midterm",
		LinkToken:       "tok-" + t.Name(),
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(time.Hour),
		DurationMinutes: 30,
		Active:          true,
		Questions: []model.Question{
			{
				Type: model.QuestionTypeSingleChoice, Text: "What is 2+2?",
				Chapter: "arithmetic", Difficulty: "easy", Score: 2,
				Options: []model.Option{
					{Label: "A", Text: "3"},
					{Label: "B", Text: "4", IsCorrect: true},
					{Label: "C", Text: "5"},
				},
			},
			{
				Type: model.QuestionTypeTrueFalse, Text: "7 is a prime number.",
				Chapter: "primes", Difficulty: "easy", Score: 1,
				Options: []model.Option{
					{Label: "true", IsCorrect: true},
					{Label: "false"},
				},
			},
			{
				Type: model.QuestionTypeEssay, Text: "Explain proof by induction.",
				Chapter: "proofs", Difficulty: "hard", Score: 5,
			},
		},
	}
	if mutate != nil {
		mutate(exam)
	}
	require.NoError(t, db.Create(exam).Error)
	return exam
}

func seedRosterEntry(t *testing.T, db *gorm.DB, examID uint, studentID, email string) {
	t.Helper()
	entry := model.AllowedStudent{ExamID: examID, StudentID: studentID, Email: email, DisplayName: "Student " + studentID}
	require.NoError(t, db.Create(&entry).Error)
}

// seedAttempt creates an in_progress attempt whose frozen set covers the
// exam's full pool in pool order.
func seedAttempt(t *testing.T, db *gorm.DB, exam *model.Exam, studentID string) *model.Attempt {
	t.Helper()
	attempt := &model.Attempt{
		ExamID:    exam.ID,
		StudentID: studentID,
		Status:    model.AttemptStatusInProgress,
		StartTime: time.Now(),
	}
	require.NoError(t, db.Create(attempt).Error)
	for i, q := range exam.Questions {
		row := model.AttemptQuestion{AttemptID: attempt.ID, QuestionID: q.ID, OrderIndex: i}
		require.NoError(t, db.Create(&row).Error)
	}
	return attempt
}

func newEligibilityForTest(db *gorm.DB) *eligibilityService {
	svc := NewEligibilityService(
		repository.NewExamRepository(db),
		repository.NewRosterRepository(db),
		repository.NewAttemptRepository(db),
	)
	return svc.(*eligibilityService)
}

func newAdmissionForTest(db *gorm.DB) (*admissionService, *eligibilityService) {
	elig := newEligibilityForTest(db)
	svc := NewAdmissionService(
		elig,
		repository.NewAttemptRepository(db),
		repository.NewAttemptQuestionRepository(db),
		NewQuestionSetService(),
		db,
	)
	return svc.(*admissionService), elig
}

func newAnswerForTest(db *gorm.DB) *answerService {
	svc := NewAnswerService(
		repository.NewExamRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewAttemptQuestionRepository(db),
		repository.NewQuestionRepository(db),
	)
	return svc.(*answerService)
}

func newGradingForTest(db *gorm.DB) *gradingService {
	svc := NewGradingService(
		repository.NewExamRepository(db),
		repository.NewAttemptRepository(db),
		db,
	)
	return svc.(*gradingService)
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
