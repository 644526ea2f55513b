package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/store"
)

// ListResidences handles GET /api/residences?on_campus=&type=.
func (h *Handler) ListResidences(c *gin.Context) {
	var filter store.ResidenceFilter
	if v, ok := c.GetQuery("on_campus"); ok {
		on := false
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			on = true
		}
		filter.OnCampus = &on
	}
	if v := c.Query("type"); v != "" {
		t := model.ResidenceType(v)
		if !t.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid residence type"})
			return
		}
		filter.Type = &t
	}

	residences, err := h.service.ListResidences(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, residences)
}

// ResidenceStats handles GET /api/residences/stats.
func (h *Handler) ResidenceStats(c *gin.Context) {
	stats, err := h.service.ResidenceStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type createResidenceRequest struct {
	Name           string              `json:"residence_name" binding:"required"`
	Block          string              `json:"block"`
	OnCampus       bool                `json:"on_campus"`
	Type           model.ResidenceType `json:"residence_type"`
	AvailableRooms int                 `json:"available_rooms"`
	Restrictions   string              `json:"restrictions"`
}

// CreateResidence handles POST /api/residences. It is idempotent on (name, block).
func (h *Handler) CreateResidence(c *gin.Context) {
	var req createResidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.service.EnsureResidence(c.Request.Context(), model.Residence{
		Name:           req.Name,
		Block:          req.Block,
		OnCampus:       req.OnCampus,
		Type:           req.Type,
		AvailableRooms: req.AvailableRooms,
		Restrictions:   req.Restrictions,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

type syncOffCampusRequest struct {
	ResidenceNames []string `json:"residence_names"`
}

// SyncOffCampus handles POST /api/offcampus/sync.
func (h *Handler) SyncOffCampus(c *gin.Context) {
	var req syncOffCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	residences, err := h.service.SyncOffCampus(c.Request.Context(), req.ResidenceNames)
	if err != nil {
		writeError(c, err)
		return
	}
	ids := make([]int64, 0, len(residences))
	for _, r := range residences {
		ids = append(ids, r.ID)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ids": ids})
}

// AcceptedOffCampus handles GET /api/offcampus/:residence_id/accepted.
func (h *Handler) AcceptedOffCampus(c *gin.Context) {
	residenceID, ok := idParam(c, "residence_id")
	if !ok {
		return
	}
	students, err := h.service.AcceptedOffCampusStudents(c.Request.Context(), residenceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}
