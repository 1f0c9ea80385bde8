package repository

import (
	"github.com/lshigami/Proctorly/internal/model"
	"gorm.io/gorm"
)

type AttemptQuestionRepository interface {
	FindByAttemptAndQuestion(attemptID, questionID uint) (*model.AttemptQuestion, error)
	FindAllByAttempt(attemptID uint) ([]model.AttemptQuestion, error)
	Update(aq *model.AttemptQuestion) error
}

type attemptQuestionRepository struct {
	db *gorm.DB
}

func NewAttemptQuestionRepository(db *gorm.DB) AttemptQuestionRepository {
	return &attemptQuestionRepository{db: db}
}

func (r *attemptQuestionRepository) FindByAttemptAndQuestion(attemptID, questionID uint) (*model.AttemptQuestion, error) {
	var aq model.AttemptQuestion
	err := r.db.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&aq).Error
	if err != nil {
		return nil, err
	}
	return &aq, nil
}

func (r *attemptQuestionRepository) FindAllByAttempt(attemptID uint) ([]model.AttemptQuestion, error) {
	var aqs []model.AttemptQuestion
	err := r.db.Preload("Question").Preload("Question.Options").Where("attempt_id = ?", attemptID).Order("order_index ASC").Find(&aqs).Error
	return aqs, err
}

func (r *attemptQuestionRepository) Update(aq *model.AttemptQuestion) error {
	return r.db.Save(aq).Error
}
