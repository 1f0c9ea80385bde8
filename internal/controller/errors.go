package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Proctorly/internal/dto"
	"github.com/lshigami/Proctorly/internal/service"
	"github.com/rs/zerolog/log"
)

// RespondError maps service sentinels to a stable reason code and HTTP
// status. Anything unmapped is a store failure: logged with detail, surfaced
// generically.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrQuestionNotInAttempt):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeNotFound})
	case errors.Is(err, service.ErrNotInRoster),
		errors.Is(err, service.ErrExamNotStarted),
		errors.Is(err, service.ErrResultsNotAvailable):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeForbidden})
	case errors.Is(err, service.ErrExamEnded):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeExamEnded, Redirect: true})
	case errors.Is(err, service.ErrAlreadyAttempted):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAlreadyAttempted})
	case errors.Is(err, service.ErrAttemptClosed):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAttemptClosed})
	case errors.Is(err, service.ErrTimeExpired):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeTimeExpired})
	case errors.Is(err, service.ErrExamImmutable):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAttemptClosed})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed with store error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Code: dto.CodeStoreError})
	}
}
