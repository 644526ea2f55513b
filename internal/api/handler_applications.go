package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"housing-allocation-backend/internal/allocation"
	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/mw"
	"housing-allocation-backend/internal/pkg/token"
)

type createApplicationsRequest struct {
	Residences []json.RawMessage `json:"residences"`
}

// applicationResponse flattens an application with its residence and, for admin listings, its student.
type applicationResponse struct {
	ID            int64                   `json:"id"`
	StudentID     int64                   `json:"student_id"`
	StudentNumber string                  `json:"student_number,omitempty"`
	StudentName   string                  `json:"student_name,omitempty"`
	Email         string                  `json:"email,omitempty"`
	ResidenceID   int64                   `json:"residence_id"`
	ResidenceName string                  `json:"residence_name"`
	Block         string                  `json:"block"`
	OnCampus      bool                    `json:"on_campus"`
	Status        model.ApplicationStatus `json:"status"`
	ApplyDate     time.Time               `json:"apply_date"`
	RoomNumber    *string                 `json:"room_number"`
}

func toApplicationResponse(a model.Application, withStudent bool) applicationResponse {
	resp := applicationResponse{
		ID:            a.ID,
		StudentID:     a.StudentID,
		ResidenceID:   a.ResidenceID,
		ResidenceName: a.Residence.Name,
		Block:         a.Residence.Block,
		OnCampus:      a.Residence.OnCampus,
		Status:        a.Status,
		ApplyDate:     a.ApplyDate,
		RoomNumber:    a.RoomNumber,
	}
	if withStudent {
		resp.StudentNumber = a.Student.StudentNumber
		resp.StudentName = a.Student.FullName()
		resp.Email = a.Student.Email
	}
	return resp
}

func toApplicationResponses(apps []model.Application, withStudent bool) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a, withStudent))
	}
	return out
}

// CreateApplications handles POST /api/applications.
func (h *Handler) CreateApplications(c *gin.Context) {
	var req createApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.Residences) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no residences provided"})
		return
	}
	selections, err := decodeSelections(req.Residences)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, _ := mw.Actor(c)
	ids, err := h.service.ResolveAndCreateApplications(c.Request.Context(), studentID, selections)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "application_ids": ids})
}

// MyApplications handles GET /api/applications/me.
func (h *Handler) MyApplications(c *gin.Context) {
	studentID, _ := mw.Actor(c)
	h.writeStudentApplications(c, studentID)
}

// StudentApplications handles GET /api/students/:student_id/applications.
// Students may only read their own applications.
func (h *Handler) StudentApplications(c *gin.Context) {
	studentID, ok := idParam(c, "student_id")
	if !ok {
		return
	}
	actorID, role := mw.Actor(c)
	if role != token.RoleAdmin && actorID != studentID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	h.writeStudentApplications(c, studentID)
}

func (h *Handler) writeStudentApplications(c *gin.Context, studentID int64) {
	apps, err := h.service.StudentApplications(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toApplicationResponses(apps, false))
}

// AllApplications handles GET /api/applications.
func (h *Handler) AllApplications(c *gin.Context) {
	apps, err := h.service.AllApplications(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toApplicationResponses(apps, true))
}

// Decide returns the handler for POST /api/applications/:id/approve and /reject.
func (h *Handler) Decide(decision allocation.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := idParam(c, "id")
		if !ok {
			return
		}
		adminID, _ := mw.Actor(c)
		if err := h.service.DecideApplication(c.Request.Context(), appID, decision, adminID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// Respond returns the handler for POST /api/applications/:id/accept and /reject_offer.
func (h *Handler) Respond(response allocation.OfferResponse) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := idParam(c, "id")
		if !ok {
			return
		}
		studentID, _ := mw.Actor(c)
		room, err := h.service.RespondToOffer(c.Request.Context(), appID, response, studentID)
		if err != nil {
			writeError(c, err)
			return
		}

		body := gin.H{"success": true}
		if response == allocation.AcceptOffer {
			if room != "" {
				body["room_number"] = room
			} else {
				body["room_number"] = nil
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
