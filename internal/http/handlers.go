package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/config"
	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/metrics"
	"github.com/nirmitee/clinic-api/internal/queue"
	"github.com/nirmitee/clinic-api/internal/storage"
)

// UserStore is the narrow credential-store surface the handlers and the
// authorization middleware consume.
type UserStore interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindUserByUserName(ctx context.Context, userName string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByEmailAndOTP(ctx context.Context, email, otp string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiry time.Time) error
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID, when time.Time) error
	SetToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokenByUserName(ctx context.Context, userName string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, clearOTP bool) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch domain.ProfilePatch) error
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	UpdateAppointment(ctx context.Context, filter bson.M, patch domain.AppointmentPatch) (int64, error)
	FindAppointments(ctx context.Context, filter bson.M, populate bool) ([]domain.Appointment, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, perMin int) (bool, error)
}

type Handler struct {
	Users           UserStore
	Appointments    AppointmentStore
	Events          queue.Publisher
	Limiter         RateLimiter // nil disables rate limiting
	Images          storage.ImageStore
	Log             *zap.Logger
	AppName         string
	JWTSecret       string
	TokenTTL        time.Duration
	OTPLength       int
	OTPTTL          time.Duration
	Exchange        string
	MailKey         string
	RateLimitPerMin int
}

func NewHandler(cfg config.Config, users UserStore, appts AppointmentStore, pub queue.Publisher,
	limiter RateLimiter, images storage.ImageStore, logger *zap.Logger) *Handler {
	return &Handler{
		Users:           users,
		Appointments:    appts,
		Events:          pub,
		Limiter:         limiter,
		Images:          images,
		Log:             logger,
		AppName:         cfg.AppName,
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        time.Duration(cfg.TokenTTLHours) * time.Hour,
		OTPLength:       cfg.OTPLength,
		OTPTTL:          time.Duration(cfg.OTPTTLMinutes) * time.Minute,
		Exchange:        cfg.RabbitExchange,
		MailKey:         cfg.RabbitBindKey,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Users.Ping(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// publishMail hands a mail job to the broker without blocking the request.
// Delivery is best effort: a broker failure is logged, never surfaced.
func (h *Handler) publishMail(c *gin.Context, to, subject, template string, locals map[string]string) {
	reqID := c.GetString(requestIDKey)
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		ev := queue.MailRequested{To: to, Subject: subject, Template: template, Locals: locals}
		if err := h.Events.Publish(ctx, h.Exchange, h.MailKey, ev, reqID); err != nil {
			metrics.MailPublished.WithLabelValues(template, "error").Inc()
			log.WithDD(ctx, h.Log).Error("mail publish failed",
				zap.String("template", template), zap.Error(err))
			return
		}
		metrics.MailPublished.WithLabelValues(template, "ok").Inc()
	}()
}

// allow enforces the per-minute limit for bucket:key. Fails open when the
// limiter errors so Redis downtime never locks users out.
func (h *Handler) allow(c *gin.Context, bucket, key string) bool {
	if h.Limiter == nil || h.RateLimitPerMin <= 0 {
		return true
	}
	ok, err := h.Limiter.Allow(c.Request.Context(), bucket+":"+key, h.RateLimitPerMin)
	if err != nil {
		h.Log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if !ok {
		errorNoData(c, tr(c, "tooManyRequests"), CodeFail, nil)
	}
	return ok
}
