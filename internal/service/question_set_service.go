package service

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lshigami/Proctorly/internal/model"
	"gorm.io/gorm"
)

// QuestionSetService materializes the frozen, ordered question set for one
// attempt. It must run exactly once per attempt; the admission controller
// owns that guarantee and calls Materialize inside the admission transaction
// so the attempt row and its question set are born atomically together.
type QuestionSetService interface {
	Materialize(tx *gorm.DB, exam *model.Exam, attemptID uint) ([]model.AttemptQuestion, error)
}

type questionSetService struct{}

func NewQuestionSetService() QuestionSetService {
	return &questionSetService{}
}

func (s *questionSetService) Materialize(tx *gorm.DB, exam *model.Exam, attemptID uint) ([]model.AttemptQuestion, error) {
	var pool []model.Question
	if err := tx.Where("exam_id = ?", exam.ID).Order("id ASC").Find(&pool).Error; err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("exam %d has no questions", exam.ID)
	}

	selected := selectQuestions(pool, exam.QuestionCount)
	if exam.Shuffle {
		rand.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}

	rows := make([]model.AttemptQuestion, len(selected))
	for i, q := range selected {
		rows[i] = model.AttemptQuestion{
			AttemptID:  attemptID,
			QuestionID: q.ID,
			OrderIndex: i,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("materialize attempt questions: %w", err)
	}
	return rows, nil
}

// selectQuestions picks count questions from the pool, keeping the pool's
// difficulty mix roughly proportional. count <= 0 or count >= len(pool)
// selects the whole pool.
func selectQuestions(pool []model.Question, count int) []model.Question {
	if count <= 0 || count >= len(pool) {
		return append([]model.Question(nil), pool...)
	}

	buckets := make(map[string][]model.Question)
	var order []string
	for _, q := range pool {
		if _, seen := buckets[q.Difficulty]; !seen {
			order = append(order, q.Difficulty)
		}
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}
	sort.Strings(order)

	selected := make([]model.Question, 0, count)
	remaining := count
	for idx, d := range order {
		bucket := buckets[d]
		share := count * len(bucket) / len(pool)
		if idx == len(order)-1 {
			share = remaining // last bucket absorbs rounding leftovers
		}
		if share > len(bucket) {
			share = len(bucket)
		}
		if share > remaining {
			share = remaining
		}
		perm := rand.Perm(len(bucket))
		for _, p := range perm[:share] {
			selected = append(selected, bucket[p])
		}
		remaining -= share
	}

	// Rounding can leave slots unfilled when a bucket was smaller than its
	// share; top up from whatever was not picked yet.
	if remaining > 0 {
		picked := make(map[uint]bool, len(selected))
		for _, q := range selected {
			picked[q.ID] = true
		}
		for _, q := range pool {
			if remaining == 0 {
				break
			}
			if !picked[q.ID] {
				selected = append(selected, q)
				remaining--
			}
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })
	return selected
}
