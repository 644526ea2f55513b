package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"housing-allocation-backend/internal/allocation"
	"housing-allocation-backend/internal/metrics"
	"housing-allocation-backend/internal/mw"
)

// RouterConfig holds the middleware settings of the router.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	JWTSecret       string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Metrics())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Public API group
	public := r.Group("/api")
	public.Use(rateLimiter)
	{
		public.GET("/residences", h.ListResidences)
		public.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	authed := r.Group("/api")
	authed.Use(rateLimiter, mw.Auth(cfg.JWTSecret))

	student := authed.Group("")
	student.Use(mw.StudentOnly())
	{
		student.POST("/applications", h.CreateApplications)
		student.GET("/applications/me", h.MyApplications)
		student.POST("/applications/:id/accept", h.Respond(allocation.AcceptOffer))
		student.POST("/applications/:id/reject_offer", h.Respond(allocation.RejectOffer))
		student.PUT("/students/me/password", h.UpdatePassword)

		student.GET("/subscriptions", h.GetSubscriptions)
		student.PUT("/subscriptions", h.PutSubscription)
		student.DELETE("/subscriptions", h.DeleteSubscription)
	}

	admin := authed.Group("")
	admin.Use(mw.AdminOnly())
	{
		admin.GET("/residences/stats", h.ResidenceStats)
		admin.POST("/residences", h.CreateResidence)
		admin.POST("/offcampus/sync", h.SyncOffCampus)
		admin.GET("/offcampus/:residence_id/accepted", h.AcceptedOffCampus)
		admin.GET("/students", h.ListStudents)
		admin.GET("/applications", h.AllApplications)
		admin.POST("/applications/:id/approve", h.Decide(allocation.Approve))
		admin.POST("/applications/:id/reject", h.Decide(allocation.Reject))
	}

	// Students read their own applications; admins read anyone's.
	authed.GET("/students/:student_id/applications", h.StudentApplications)

	return r
}
