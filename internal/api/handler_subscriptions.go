package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/mw"
	"housing-allocation-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers or replaces the caller's push subscription for an endpoint.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	studentID, _ := mw.Actor(c)
	err := h.store.PutSubscription(c.Request.Context(), model.PushSubscription{
		Endpoint:  req.Endpoint,
		StudentID: studentID,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		CreatedAt: time.Now(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	studentID, _ := mw.Actor(c)
	if err := h.store.DeleteSubscription(c.Request.Context(), studentID, req.Endpoint); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscriptions lists the endpoints the caller is subscribed with.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	studentID, _ := mw.Actor(c)
	subs, err := h.store.StudentSubscriptions(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	endpoints := make([]string, len(subs))
	for i, s := range subs {
		endpoints[i] = s.Endpoint
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}
