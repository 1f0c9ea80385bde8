package student

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Proctorly/internal/controller"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/service"
	"github.com/rs/zerolog/log"
)

// StudentExamController serves the attempt lifecycle: access validation,
// admission + question delivery, answer submission, finalization, and stats.
type StudentExamController struct {
	eligibilitySvc service.EligibilityService
	admissionSvc   service.AdmissionService
	answerSvc      service.AnswerService
	gradingSvc     service.GradingService
	statsSvc       service.StatsService
}

func NewStudentExamController(
	eligibilitySvc service.EligibilityService,
	admissionSvc service.AdmissionService,
	answerSvc service.AnswerService,
	gradingSvc service.GradingService,
	statsSvc service.StatsService,
) *StudentExamController {
	return &StudentExamController{
		eligibilitySvc: eligibilitySvc,
		admissionSvc:   admissionSvc,
		answerSvc:      answerSvc,
		gradingSvc:     gradingSvc,
		statsSvc:       statsSvc,
	}
}

// ValidateAccess godoc
// @Summary Check whether a student may start or continue an exam
// @Description Evaluates link validity, roster membership, the exam window, and prior attempts, in that order. A closed window returns EXAM_ENDED with redirect=true so the client fetches results instead.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param link path string true "Exam link token"
// @Param access body dto.ValidateAccessDTO true "Student identity"
// @Success 200 {object} dto.ValidateAccessResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /exams/{link}/validate-access [post]
func (ctrl *StudentExamController) ValidateAccess(c *gin.Context) {
	var req dto.ValidateAccessDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	exam, entry, err := ctrl.eligibilitySvc.CheckAccess(c.Param("link"), req.StudentID, req.Email)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ValidateAccessResponseDTO{
		Eligible:    true,
		ExamTitle:   exam.Title,
		DisplayName: entry.DisplayName,
	})
}

// GetQuestions godoc
// @Summary Admit the student and return the attempt's frozen question set
// @Description Idempotent: a first call creates the attempt with its materialized question set; reloads return the same set. Concurrent calls for the same student resolve to a single attempt.
// @Tags Student - Attempts
// @Produce json
// @Param link path string true "Exam link token"
// @Param student_id query string true "Student ID"
// @Param email query string true "Student email"
// @Success 200 {object} dto.AttemptHandleDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /exams/{link}/questions [get]
func (ctrl *StudentExamController) GetQuestions(c *gin.Context) {
	studentID := c.Query("student_id")
	email := c.Query("email")
	if studentID == "" || email == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "student_id and email are required"})
		return
	}

	handle, err := ctrl.admissionSvc.Admit(c.Param("link"), studentID, email)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	resp := dto.AttemptHandleDTO{
		AttemptID: handle.Attempt.ID,
		ExamID:    handle.Attempt.ExamID,
		StudentID: handle.Attempt.StudentID,
		Status:    handle.Attempt.Status,
		StartTime: handle.Attempt.StartTime,
		Deadline:  handle.Exam.EffectiveDeadline(handle.Attempt.StartTime),
	}
	resp.Questions = make([]dto.AttemptQuestionDTO, len(handle.Questions))
	for i, aq := range handle.Questions {
		var qDTO dto.QuestionResponseDTO
		copier.Copy(&qDTO, &aq.Question)
		resp.Questions[i] = dto.AttemptQuestionDTO{
			OrderIndex:    aq.OrderIndex,
			Question:      qDTO,
			StudentAnswer: aq.StudentAnswer,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitAnswer godoc
// @Summary Record or overwrite the answer to one question
// @Description Last-write-wins per question while the attempt is in progress and within the time window. Auto-gradable types are scored on the spot.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param link path string true "Exam link token"
// @Param answer body dto.SubmitAnswerDTO true "Answer payload"
// @Success 200 {object} map[string]string
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /exams/{link}/answers [post]
func (ctrl *StudentExamController) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ctrl.answerSvc.SubmitAnswer(c.Param("link"), req.StudentID, req.QuestionID, req.Answer); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// SubmitExam godoc
// @Summary Finalize the attempt and return the graded result
// @Description First call transitions the attempt to completed and computes the score from stored per-question awards; repeat calls return the stored result unchanged.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param link path string true "Exam link token"
// @Param submission body dto.SubmitExamDTO true "Student identity"
// @Success 200 {object} dto.FinalizeResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{link}/submit [post]
func (ctrl *StudentExamController) SubmitExam(c *gin.Context) {
	var req dto.SubmitExamDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := ctrl.gradingSvc.Finalize(c.Param("link"), req.StudentID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStats godoc
// @Summary Student result plus cohort statistics
// @Description Available after the attempt is finalized or the window closed. An in-progress attempt whose time ran out is auto-finalized here.
// @Tags Student - Attempts
// @Produce json
// @Param link path string true "Exam link token"
// @Param student_id query string true "Student ID"
// @Success 200 {object} dto.StatsResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{link}/stats [get]
func (ctrl *StudentExamController) GetStats(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "student_id is required"})
		return
	}

	stats, err := ctrl.statsSvc.GetStats(c.Param("link"), studentID)
	if err != nil {
		if errors.Is(err, service.ErrResultsNotAvailable) {
			log.Debug().Str("studentID", studentID).Msg("Stats requested before results are available")
		}
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
