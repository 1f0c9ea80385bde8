package repository

import (
	"github.com/lshigami/Proctorly/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RosterRepository interface {
	Upsert(entries []model.AllowedStudent) error
	FindByExamAndStudent(examID uint, studentID string) (*model.AllowedStudent, error)
	FindByExamID(examID uint) ([]model.AllowedStudent, error)
}

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) Upsert(entries []model.AllowedStudent) error {
	if len(entries) == 0 {
		return nil
	}
	// Re-uploading a roster refreshes email/display name for existing entries.
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
	}).Create(&entries).Error
}

func (r *rosterRepository) FindByExamAndStudent(examID uint, studentID string) (*model.AllowedStudent, error) {
	var entry model.AllowedStudent
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *rosterRepository) FindByExamID(examID uint) ([]model.AllowedStudent, error) {
	var entries []model.AllowedStudent
	err := r.db.Where("exam_id = ?", examID).Order("student_id ASC").Find(&entries).Error
	return entries, err
}
