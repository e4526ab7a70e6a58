package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/services"
)

func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, validationErr.Error(), gin.H{"field": validationErr.Field})
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSubtaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		logging.Logger.WithField("path", c.FullPath()).Errorf("Request failed: %v", err)
		apierrors.InternalError(c, "")
	}
}

// parseDate parses a YYYY-MM-DD value as UTC midnight. Empty yields zero.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
