package handler

import (
	"errors"
	"net/http"

	"haccp-flow/internal/api/dto"
	"haccp-flow/internal/domain"

	"github.com/gin-gonic/gin"
)

var statuses = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrDocumentNotFound, http.StatusNotFound},
	{domain.ErrInvalidDecision, http.StatusBadRequest},
	{domain.ErrCommentRequired, http.StatusBadRequest},
	{domain.ErrSkipNotAllowed, http.StatusBadRequest},
	{domain.ErrInvalidDocument, http.StatusBadRequest},
	{domain.ErrInvalidActor, http.StatusBadRequest},
	{domain.ErrNotAssignee, http.StatusForbidden},
	{domain.ErrNotYetActionable, http.StatusForbidden},
	{domain.ErrAlreadyDecided, http.StatusForbidden},
	{domain.ErrAuditModeLocked, http.StatusForbidden},
	{domain.ErrAccessDenied, http.StatusForbidden},
	{domain.ErrNotRecipient, http.StatusForbidden},
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrStorageFailure, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg, Code: domain.Code(err)})
}
