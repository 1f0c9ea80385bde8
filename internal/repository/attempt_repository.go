package repository

import (
	"github.com/lshigami/Proctorly/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	FindByExamAndStudent(examID uint, studentID string) (*model.Attempt, error)
	FindByID(id uint) (*model.Attempt, error)
	FindCompletedByExam(examID uint) ([]model.Attempt, error)
	FindAllByExam(examID uint) ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindByExamAndStudent(examID uint, studentID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindCompletedByExam(examID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Where("exam_id = ? AND status = ?", examID, model.AttemptStatusCompleted).Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindAllByExam(examID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Where("exam_id = ?", examID).Order("start_time ASC").Find(&attempts).Error
	return attempts, err
}
