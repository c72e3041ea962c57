package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/errs"
	"github.com/spiritus-lectoris/catalog-service/pkg/validate"
)

type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler funnels every error through one place: field
// violations become structured 400s, known domain errors map to their
// status codes, anything else is logged and rendered as a generic 500.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var fe *validate.FieldsError
		if errors.As(err, &fe) {
			_ = c.JSON(http.StatusBadRequest, errs.ValidationErrorResponse{
				Message: "Validation failed",
				Errors:  fe.Fields,
			})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)})
			return
		}

		switch {
		case errors.Is(err, errs.ErrNotFound):
			_ = c.JSON(http.StatusNotFound, errorResponse{Message: "Book not found"})
		case errors.Is(err, errs.ErrInvalidCredentials):
			_ = c.JSON(http.StatusUnauthorized, errorResponse{Message: "Invalid username or password"})
		default:
			log.Error("unhandled error",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
			)
			_ = c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
		}
	}
}
