package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"goanalytics/app"
	"goanalytics/domain/core"
	apperrors "goanalytics/internal/errors"
)

// statusFor maps domain and infrastructure errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidSelection):
		return http.StatusConflict
	case errors.Is(err, core.ErrIncompleteSelection), errors.Is(err, core.ErrInvalidParameter):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownDataset), errors.Is(err, app.ErrNoResult):
		return http.StatusNotFound
	}

	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeCatalogError, apperrors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
