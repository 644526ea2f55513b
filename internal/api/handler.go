package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"housing-allocation-backend/internal/allocation"
	"housing-allocation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	service *allocation.Service
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(service *allocation.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		service: service,
		store:   s,
		webpush: webpushOptions,
	}
}

// writeError maps service errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, allocation.ErrResolution), errors.Is(err, allocation.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, allocation.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, allocation.ErrConflict), errors.Is(err, allocation.ErrWrongState):
		status = http.StatusConflict
	case errors.Is(err, allocation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, allocation.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, allocation.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.WithField("path", c.FullPath()).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
