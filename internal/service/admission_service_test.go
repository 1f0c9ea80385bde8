package service

import (
	"sync"
	"testing"
	"time"

	"github.com/lshigami/Proctorly/internal/model"
	"github.com/stretchr/testify/require"
)

func TestAdmitCreatesAttemptWithFrozenSet(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	svc, _ := newAdmissionForTest(db)

	handle, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.NoError(t, err)
	require.Equal(t, model.AttemptStatusInProgress, handle.Attempt.Status)
	require.Len(t, handle.Questions, 3)
	for i, aq := range handle.Questions {
		require.Equal(t, i, aq.OrderIndex)
		require.Equal(t, handle.Attempt.ID, aq.AttemptID)
	}

	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAdmitIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	svc, _ := newAdmissionForTest(db)

	first, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.NoError(t, err)
	second, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.NoError(t, err)

	require.Equal(t, first.Attempt.ID, second.Attempt.ID)
	require.Len(t, second.Questions, len(first.Questions))
	for i := range first.Questions {
		require.Equal(t, first.Questions[i].QuestionID, second.Questions[i].QuestionID)
		require.Equal(t, first.Questions[i].OrderIndex, second.Questions[i].OrderIndex)
	}
}

func TestAdmitFrozenSetSurvivesPoolChange(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	svc, _ := newAdmissionForTest(db)

	first, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.NoError(t, err)

	// A question added to the pool afterwards must not leak into the set.
	extra := model.Question{ExamID: exam.ID, Type: model.QuestionTypeTrueFalse, Text: "Later addition.", Score: 1}
	require.NoError(t, db.Create(&extra).Error)

	second, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.NoError(t, err)
	require.Len(t, second.Questions, len(first.Questions))
	for _, aq := range second.Questions {
		require.NotEqual(t, extra.ID, aq.QuestionID)
	}
}

func TestAdmitConcurrentRequestsShareOneAttempt(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	svc, _ := newAdmissionForTest(db)

	const callers = 8
	handles := make([]*AttemptHandle, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = svc.Admit(exam.LinkToken, "s1", "s1@example.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, handles[0].Attempt.ID, handles[i].Attempt.ID)
	}

	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAdmitAfterWindowFailsClosed(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	svc, elig := newAdmissionForTest(db)
	elig.now = fixedClock(exam.EndDate.Add(time.Minute))

	_, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.ErrorIs(t, err, ErrExamEnded)

	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Count(&count).Error)
	require.EqualValues(t, 0, count, "a failed admission must not leave an attempt behind")
}

func TestAdmitCompletedAttemptDoesNotReopen(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedRosterEntry(t, db, exam.ID, "s1", "s1@example.com")
	attempt := seedAttempt(t, db, exam, "s1")
	require.NoError(t, db.Model(attempt).Update("status", model.AttemptStatusCompleted).Error)
	svc, _ := newAdmissionForTest(db)

	_, err := svc.Admit(exam.LinkToken, "s1", "s1@example.com")
	require.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestAdmitStrangerRejected(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	svc, _ := newAdmissionForTest(db)

	_, err := svc.Admit(exam.LinkToken, "stranger", "stranger@example.com")
	require.ErrorIs(t, err, ErrNotInRoster)
}
