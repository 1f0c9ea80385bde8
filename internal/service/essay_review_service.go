package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Proctorly/config"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/model"
	"github.com/lshigami/Proctorly/internal/repository"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// EssayReviewService is the external grader for free-text answers. The answer
// ledger stores essay answers ungraded; an admin triggers this review on a
// completed attempt, which scores each essay, stores feedback, and recomputes
// the attempt total explicitly (a re-grade is never silent).
type EssayReviewService interface {
	ReviewAttempt(attemptID uint) (*dto.FinalizeResponseDTO, error)
}

type essayReviewService struct {
	attemptRepo repository.AttemptRepository
	aqRepo      repository.AttemptQuestionRepository
	client      *genai.GenerativeModel
	db          *gorm.DB
}

func NewEssayReviewService(
	cfg *config.Config,
	attemptRepo repository.AttemptRepository,
	aqRepo repository.AttemptQuestionRepository,
	db *gorm.DB,
) (EssayReviewService, error) {
	svc := &essayReviewService{attemptRepo: attemptRepo, aqRepo: aqRepo, db: db}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Essay review will be unavailable.")
		return svc, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	svc.client = client.GenerativeModel("gemini-1.5-flash")
	return svc, nil
}

func (s *essayReviewService) ReviewAttempt(attemptID uint) (*dto.FinalizeResponseDTO, error) {
	if s.client == nil {
		return nil, fmt.Errorf("essay review unavailable: gemini client not initialized")
	}

	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if !attempt.Completed() {
		// Essays are only reviewed once the attempt is immutable for the student.
		return nil, ErrResultsNotAvailable
	}

	rows, err := s.aqRepo.FindAllByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("load attempt questions: %w", err)
	}

	reviewed := 0
	for i := range rows {
		row := &rows[i]
		if row.Question.Type != model.QuestionTypeEssay || row.StudentAnswer == nil || row.AwardedScore != nil {
			continue
		}
		feedback, score, reviewErr := s.scoreEssay(&row.Question, *row.StudentAnswer)
		if reviewErr != nil {
			log.Error().Err(reviewErr).Uint("attemptID", attemptID).Uint("questionID", row.QuestionID).
				Msg("Essay review failed for question, leaving it ungraded")
			continue
		}
		correct := score >= row.Question.Score/2
		row.Feedback = feedback
		row.AwardedScore = &score
		row.IsCorrect = &correct
		if err := s.aqRepo.Update(row); err != nil {
			return nil, fmt.Errorf("store essay review: %w", err)
		}
		reviewed++
	}

	// Recompute and persist the attempt total from the updated rows.
	total := sumAwardedScores(rows)
	if err := s.db.Model(&model.Attempt{}).Where("id = ?", attemptID).
		Update("score", total).Error; err != nil {
		return nil, fmt.Errorf("update attempt score after review: %w", err)
	}
	attempt.Score = &total
	log.Info().Uint("attemptID", attemptID).Int("reviewed", reviewed).Float64("score", total).Msg("Essay review applied")

	return buildFinalizeResponse(attempt, rows), nil
}

func (s *essayReviewService) scoreEssay(question *model.Question, answer string) (string, float64, error) {
	var prompt strings.Builder
	prompt.WriteString("You are grading a student's written answer on an exam.\n\n")
	prompt.WriteString("Question:\n---\n")
	prompt.WriteString(question.Text)
	prompt.WriteString("\n---\n\nStudent's Answer:\n---\n")
	prompt.WriteString(answer)
	prompt.WriteString("\n---\n\n")
	prompt.WriteString(fmt.Sprintf(`Evaluate correctness, completeness, and clarity.

Format your response strictly as:
Score: [a number from 0.0 to %.1f]
Feedback:
[brief, concrete feedback for the student]
`, question.Score))

	resp, err := s.client.GenerateContent(context.Background(), genai.Text(prompt.String()))
	if err != nil {
		return "", 0, fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("gemini returned no content")
	}

	raw := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}

	scoreStr, feedback, err := parseScoreAndFeedback(raw)
	if err != nil {
		return "", 0, err
	}
	score, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return feedback, 0, fmt.Errorf("could not parse score value %q from review response", scoreStr)
	}
	if score > question.Score {
		score = question.Score
	}
	if score < 0 {
		score = 0
	}
	return feedback, score, nil
}

func parseScoreAndFeedback(raw string) (scoreStr, feedback string, err error) {
	scoreIdx := strings.Index(raw, "Score:")
	if scoreIdx == -1 {
		return "", raw, fmt.Errorf("review response missing 'Score:' prefix")
	}
	rest := raw[scoreIdx+len("Score:"):]
	if nl := strings.Index(rest, "\n"); nl != -1 {
		scoreStr = strings.TrimSpace(rest[:nl])
		rest = rest[nl+1:]
	} else {
		scoreStr = strings.TrimSpace(rest)
		rest = ""
	}
	if fields := strings.Fields(scoreStr); len(fields) > 0 {
		scoreStr = fields[0]
	}

	feedback = strings.TrimSpace(rest)
	feedback = strings.TrimPrefix(feedback, "Feedback:")
	feedback = strings.TrimSpace(feedback)
	return scoreStr, feedback, nil
}
