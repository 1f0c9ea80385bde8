package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lshigami/Proctorly/internal/cache"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStatsForTest(db *gorm.DB, statsCache *cache.Cache) (*statsService, *gradingService) {
	grading := newGradingForTest(db)
	svc := NewStatsService(
		repository.NewExamRepository(db),
		repository.NewAttemptRepository(db),
		grading,
		statsCache,
	)
	return svc.(*statsService), grading
}

func newMiniredisCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewCacheWithClient(client, time.Minute)
}

func TestGetStatsUnavailableWhileInProgress(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	seedAttempt(t, db, exam, "s1")
	svc, _ := newStatsForTest(db, &cache.Cache{})

	_, err := svc.GetStats(exam.LinkToken, "s1")
	require.ErrorIs(t, err, ErrResultsNotAvailable)
}

func TestGetStatsAutoFinalizesExpiredAttempt(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	attempt := seedAttempt(t, db, exam, "s1")
	answers := newAnswerForTest(db)
	require.NoError(t, answers.SubmitAnswer(exam.LinkToken, "s1", exam.Questions[0].ID, "B"))

	svc, _ := newStatsForTest(db, &cache.Cache{})
	svc.now = fixedClock(attempt.StartTime.Add(time.Duration(exam.DurationMinutes+1) * time.Minute))

	stats, err := svc.GetStats(exam.LinkToken, "s1")
	require.NoError(t, err)
	require.Equal(t, model.AttemptStatusCompleted, stats.Student.Status)
	require.Equal(t, 2.0, stats.Student.Score)

	reloaded, err := repository.NewAttemptRepository(db).FindByID(attempt.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Completed(), "expired attempt must be persisted as completed")
}

func TestGetStatsCohortAggregates(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	answers := newAnswerForTest(db)
	grading := newGradingForTest(db)

	seedAttempt(t, db, exam, "s1")
	require.NoError(t, answers.SubmitAnswer(exam.LinkToken, "s1", exam.Questions[0].ID, "B")) // 2 pts
	_, err := grading.Finalize(exam.LinkToken, "s1")
	require.NoError(t, err)

	seedAttempt(t, db, exam, "s2")
	require.NoError(t, answers.SubmitAnswer(exam.LinkToken, "s2", exam.Questions[0].ID, "B"))    // 2 pts
	require.NoError(t, answers.SubmitAnswer(exam.LinkToken, "s2", exam.Questions[1].ID, "true")) // 1 pt
	_, err = grading.Finalize(exam.LinkToken, "s2")
	require.NoError(t, err)

	svc, _ := newStatsForTest(db, &cache.Cache{})
	stats, err := svc.GetStats(exam.LinkToken, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, stats.Cohort.CompletedCount)
	require.Equal(t, 2.5, stats.Cohort.AverageScore)
	require.Equal(t, 3.0, stats.Cohort.HighestScore)
}

func TestGetStatsCohortServedFromCache(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	answers := newAnswerForTest(db)
	grading := newGradingForTest(db)

	seedAttempt(t, db, exam, "s1")
	require.NoError(t, answers.SubmitAnswer(exam.LinkToken, "s1", exam.Questions[0].ID, "B"))
	_, err := grading.Finalize(exam.LinkToken, "s1")
	require.NoError(t, err)

	svc, _ := newStatsForTest(db, newMiniredisCache(t))

	first, err := svc.GetStats(exam.LinkToken, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, first.Cohort.CompletedCount)

	// A finalize landing after the cache fill is not visible until the TTL
	// expires; the cached aggregate is served as-is.
	seedAttempt(t, db, exam, "s2")
	_, err = grading.Finalize(exam.LinkToken, "s2")
	require.NoError(t, err)

	second, err := svc.GetStats(exam.LinkToken, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, second.Cohort.CompletedCount)
}

func TestGetStatsWithoutAttempt(t *testing.T) {
	db := setupTestDB(t)
	exam := seedExam(t, db, nil)
	svc, _ := newStatsForTest(db, &cache.Cache{})

	_, err := svc.GetStats(exam.LinkToken, "s1")
	require.ErrorIs(t, err, ErrAttemptNotFound)
}
