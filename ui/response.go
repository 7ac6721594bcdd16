package ui

import (
	"net/http"
	"time"

	"gokaizen/internal/errors"

	"github.com/gin-gonic/gin"
)

// envelope is the JSON shape of every API response
type envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps error codes to HTTP statuses. noDataStatus lets data
// routes answer 404 where analysis answers 400.
func respondError(c *gin.Context, err error, noDataStatus int) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeNoDataAvailable:
		status = noDataStatus
	case errors.CodeInvalidParameter, errors.CodeInvalidInput, errors.CodeInsufficientSampleSize:
		status = http.StatusBadRequest
	case errors.CodeArchiveDisabled:
		status = http.StatusNotImplemented
	}

	c.JSON(status, envelope{
		Success:   false,
		Message:   err.Error(),
		ErrorCode: code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
