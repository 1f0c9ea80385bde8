package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Proctorly/internal/controller"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	examSvc   service.AdminExamService
	rosterSvc service.RosterService
	reviewSvc service.EssayReviewService
}

func NewAdminExamController(
	examSvc service.AdminExamService,
	rosterSvc service.RosterService,
	reviewSvc service.EssayReviewService,
) *AdminExamController {
	return &AdminExamController{examSvc: examSvc, rosterSvc: rosterSvc, reviewSvc: reviewSvc}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return uint(val), true
}

// CreateExam godoc
// @Summary Create a new exam with its question pool
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam body dto.ExamCreateDTO true "Exam definition"
// @Success 201 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams [post]
func (ctrl *AdminExamController) CreateExam(c *gin.Context) {
	var req dto.ExamCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind ExamCreateDTO")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.examSvc.CreateExam(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateExam godoc
// @Summary Update exam metadata
// @Description Fails once any attempt exists; exams with attempts are immutable.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param exam body dto.ExamUpdateDTO true "Exam metadata"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id} [put]
func (ctrl *AdminExamController) UpdateExam(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}
	var req dto.ExamUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.examSvc.UpdateExam(examID, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetExam godoc
// @Summary Get an exam with questions and correct options
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id} [get]
func (ctrl *AdminExamController) GetExam(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}
	resp, err := ctrl.examSvc.GetExam(examID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListExams godoc
// @Summary List exams with attempt counts
// @Tags Admin - Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Router /admin/exams [get]
func (ctrl *AdminExamController) ListExams(c *gin.Context) {
	exams, err := ctrl.examSvc.ListExams()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

// UploadRoster godoc
// @Summary Upload the allowed-students roster as CSV
// @Description Multipart file field "roster" with columns student_id,email,display_name. Existing entries are refreshed.
// @Tags Admin - Exams
// @Accept multipart/form-data
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param roster formData file true "CSV roster"
// @Success 200 {object} dto.RosterImportResultDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/roster [post]
func (ctrl *AdminExamController) UploadRoster(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("roster")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "roster file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "could not open roster file"})
		return
	}
	defer file.Close()

	result, err := ctrl.rosterSvc.ImportCSV(examID, file)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListResults godoc
// @Summary List all attempts and scores for an exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {array} dto.AttemptResultDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{exam_id}/results [get]
func (ctrl *AdminExamController) ListResults(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}
	results, err := ctrl.examSvc.ListResults(examID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ReviewEssays godoc
// @Summary Run the AI essay review over a completed attempt
// @Description Scores ungraded essay answers, stores feedback, and recomputes the attempt total.
// @Tags Admin - Exams
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.FinalizeResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/attempts/{attempt_id}/review-essays [post]
func (ctrl *AdminExamController) ReviewEssays(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "attempt_id")
	if !ok {
		return
	}
	result, err := ctrl.reviewSvc.ReviewAttempt(attemptID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
