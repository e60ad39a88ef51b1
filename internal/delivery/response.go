package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"smartmart_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorBody struct {
	Detail string `json:"detail"`
}

func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Detail: message})
}

// HandleError writes err with the status of its domain kind. Client errors keep
// their own message; anything else is reported as an internal error prefixed by
// action.
func HandleError(c *gin.Context, log *logrus.Logger, action string, err error) {
	entry := log.WithField("request_id", c.GetString(requestIDKey))
	if !domain.IsClientError(err) {
		entry.Errorf("%s: %v", action, err)
		ErrorResponse(c, http.StatusInternalServerError, action+": "+err.Error())
		return
	}
	entry.Warnf("%s: %v", action, err)
	ErrorResponse(c, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// pagination reads skip and limit. Malformed or negative values fall back to
// the defaults with a warning.
func pagination(c *gin.Context, log *logrus.Logger) (int, int) {
	skip := queryInt(c, log, "skip", 0)
	limit := queryInt(c, log, "limit", defaultLimit)
	if skip < 0 {
		log.Warnf("Invalid skip parameter %d, using default 0", skip)
		skip = 0
	}
	if limit <= 0 {
		log.Warnf("Invalid limit parameter %d, using default %d", limit, defaultLimit)
		limit = defaultLimit
	}
	return skip, limit
}

func queryInt(c *gin.Context, log *logrus.Logger, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("Invalid %s parameter '%s', using default %d", name, raw, fallback)
		return fallback
	}
	return v
}

const defaultLimit = 100
