package repository

import (
	"github.com/lshigami/Proctorly/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindByLinkToken(token string) (*model.Exam, error)
	FindByIDWithQuestions(id uint) (*model.Exam, error)
	FindAllWithAttemptCount() ([]struct {
		model.Exam
		AttemptCount int
	}, error)
	HasAttempts(examID uint) (bool, error)
	Update(exam *model.Exam) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// GORM creates associated questions and options along with the exam.
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.First(&exam, id).Error
	return &exam, err
}

func (r *examRepository) FindByLinkToken(token string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Where("link_token = ?", token).First(&exam).Error
	return &exam, err
}

func (r *examRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id ASC")
	}).Preload("Questions.Options").First(&exam, id).Error
	return &exam, err
}

func (r *examRepository) FindAllWithAttemptCount() ([]struct {
	model.Exam
	AttemptCount int
}, error) {
	var results []struct {
		model.Exam
		AttemptCount int
	}
	err := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM attempts WHERE attempts.exam_id = exams.id AND attempts.deleted_at IS NULL) as attempt_count").
		Where("exams.deleted_at IS NULL").
		Order("exams.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) HasAttempts(examID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Attempt{}).Where("exam_id = ?", examID).Count(&count).Error
	return count > 0, err
}
