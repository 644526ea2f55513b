package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"housing-allocation-backend/internal/mw"
)

// ListStudents handles GET /api/students.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

type updatePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdatePassword handles PUT /api/students/me/password.
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	studentID, _ := mw.Actor(c)
	if err := h.service.UpdatePassword(c.Request.Context(), studentID, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password updated successfully"})
}
