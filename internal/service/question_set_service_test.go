package service

import (
	"testing"

	"github.com/lshigami/Proctorly/internal/model"
	"github.com/stretchr/testify/require"
)

func makePool(difficulties ...string) []model.Question {
	pool := make([]model.Question, len(difficulties))
	for i, d := range difficulties {
		pool[i] = model.Question{ID: uint(i + 1), Difficulty: d}
	}
	return pool
}

func TestSelectQuestionsWholePool(t *testing.T) {
	pool := makePool("easy", "easy", "hard")

	for _, count := range []int{0, 3, 10} {
		selected := selectQuestions(pool, count)
		require.Len(t, selected, 3)
	}
}

func TestSelectQuestionsRespectsCount(t *testing.T) {
	pool := makePool("easy", "easy", "medium", "medium", "hard", "hard")

	selected := selectQuestions(pool, 4)
	require.Len(t, selected, 4)

	seen := make(map[uint]bool)
	for _, q := range selected {
		require.False(t, seen[q.ID], "question %d selected twice", q.ID)
		seen[q.ID] = true
	}
}

func TestSelectQuestionsKeepsDifficultyMix(t *testing.T) {
	pool := makePool("easy", "easy", "easy", "easy", "hard", "hard", "hard", "hard")

	selected := selectQuestions(pool, 4)
	require.Len(t, selected, 4)

	counts := make(map[string]int)
	for _, q := range selected {
		counts[q.Difficulty]++
	}
	require.Equal(t, 2, counts["easy"])
	require.Equal(t, 2, counts["hard"])
}

func TestSelectQuestionsStableOrder(t *testing.T) {
	pool := makePool("easy", "medium", "hard", "easy", "medium", "hard")

	selected := selectQuestions(pool, 4)
	for i := 1; i < len(selected); i++ {
		require.Less(t, selected[i-1].ID, selected[i].ID)
	}
}

func TestMaterializeAssignsSequentialOrder(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, func(e *model.Exam) { e.QuestionCount = 2 })
	attempt := &model.Attempt{ExamID: exam.ID, StudentID: "s1", Status: model.AttemptStatusInProgress}
	require.NoError(t, db.Create(attempt).Error)

	rows, err := NewQuestionSetService().Materialize(db, exam, attempt.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i, row := range rows {
		require.Equal(t, i, row.OrderIndex)
		require.NotZero(t, row.QuestionID)
	}
}

func TestMaterializeEmptyPoolFails(t *testing.T) {
	db := setupTestDB(t)
	exam := &model.Exam{Title: "Empty", LinkToken: "tok-empty", Active: true}
	require.NoError(t, db.Create(exam).Error)

	_, err := NewQuestionSetService().Materialize(db, exam, 1)
	require.Error(t, err)
}
