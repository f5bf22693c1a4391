package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Locale())
	r.Use(Tracing("clinic-api"))
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// authentication
	v1.POST("/login", h.Login)
	v1.POST("/forgot-password", h.ForgotPassword)
	v1.POST("/reset-password", h.ResetPassword)

	// user
	v1.POST("/register", h.Register)
	v1.POST("/verify-email", h.VerifyEmail)
	v1.POST("/resend-otp", h.ResendOTP)
	v1.POST("/logout", h.Logout)

	// protected
	auth := v1.Group("", h.UserTokenAuth())
	auth.PUT("/change-password", h.ChangePassword)
	auth.PUT("/edit-profile", h.EditProfile)
	auth.GET("/user-detail", h.UserDetail)
	auth.POST("/appointments", h.CreateAppointment)
	auth.PUT("/appointments/:id", h.UpdateAppointment)
	auth.GET("/appointments", h.GetAppointments)

	return r
}
