package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RosterService ingests the allowed-students list for an exam from CSV.
// Expected columns: student_id,email,display_name (header row optional).
type RosterService interface {
	ImportCSV(examID uint, r io.Reader) (*dto.RosterImportResultDTO, error)
}

type rosterService struct {
	examRepo   repository.ExamRepository
	rosterRepo repository.RosterRepository
}

func NewRosterService(examRepo repository.ExamRepository, rosterRepo repository.RosterRepository) RosterService {
	return &rosterService{examRepo: examRepo, rosterRepo: rosterRepo}
}

func (s *rosterService) ImportCSV(examID uint, r io.Reader) (*dto.RosterImportResultDTO, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated per row below

	result := &dto.RosterImportResultDTO{}
	var entries []model.AllowedStudent
	seen := make(map[string]bool)

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "student_id") {
			continue // header row
		}
		if len(record) < 2 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: expected student_id,email[,display_name]", line))
			continue
		}

		studentID := strings.TrimSpace(record[0])
		email := strings.TrimSpace(record[1])
		if studentID == "" || email == "" || !strings.Contains(email, "@") {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid student_id or email", line))
			continue
		}
		if seen[studentID] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: duplicate student_id %s", line, studentID))
			continue
		}
		seen[studentID] = true

		entry := model.AllowedStudent{ExamID: examID, StudentID: studentID, Email: email}
		if len(record) > 2 {
			entry.DisplayName = strings.TrimSpace(record[2])
		}
		entries = append(entries, entry)
	}

	if err := s.rosterRepo.Upsert(entries); err != nil {
		return nil, fmt.Errorf("store roster entries: %w", err)
	}
	result.Imported = len(entries)
	log.Info().Uint("examID", examID).Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("Roster imported")
	return result, nil
}
