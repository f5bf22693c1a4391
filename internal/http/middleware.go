package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/metrics"
	"github.com/nirmitee/clinic-api/internal/security"
)

const (
	requestIDKey  = "X-Request-ID"
	authUserIDKey = "authUserId"
	authRoleKey   = "role"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

// Locale picks the response language from Accept-Language; only the primary
// subtag matters.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if i := strings.IndexAny(lang, ",;-"); i > 0 {
			lang = lang[:i]
		}
		if lang == "" {
			lang = "en"
		}
		c.Set(localeKey, strings.ToLower(strings.TrimSpace(lang)))
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Tracing opens a Datadog span per request and threads it through the
// request context so the repo spans nest under it.
func Tracing(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := tracer.StartSpanFromContext(c.Request.Context(), "http.request",
			tracer.ServiceName(service),
			tracer.ResourceName(c.Request.Method+" "+c.FullPath()),
			tracer.SpanType(ext.SpanTypeWeb),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetTag(ext.HTTPCode, strconv.Itoa(c.Writer.Status()))
		span.Finish()
	}
}

// UserTokenAuth authenticates and authorizes every protected request. The
// rejection ladder, in order: missing header, malformed header, bad
// signature or expiry, missing id claim, unknown user, stored-token
// mismatch, inactive account, blocked account. All rejections are HTTP 401
// with a localized envelope.
func (h *Handler) UserTokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			errorAuth(c, tr(c, "authorizationError"), CodeUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}

		claims, err := security.ParseUserToken(h.JWTSecret, parts[1])
		if err != nil {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}
		if claims.UID == "" {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}
		uid, err := primitive.ObjectIDFromHex(claims.UID)
		if err != nil {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}

		user, err := h.Users.FindUserByID(c.Request.Context(), uid)
		if err != nil {
			internalError(c)
			c.Abort()
			return
		}
		if user == nil {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}

		// Reconstruct the expected header from the currently stored token and
		// compare verbatim. Only the most recently issued token passes, even
		// if an older one is still cryptographically valid.
		if "Bearer "+user.Token != header {
			errorAuth(c, tr(c, "invalidToken"), CodeUnauthorized)
			return
		}

		if user.Status == domain.StatusInactive {
			errorAuth(c, tr(c, "accountIsInactive"), CodeUnauthorized)
			return
		}
		if user.Status != domain.StatusActive {
			errorAuth(c, tr(c, "accountBlocked"), CodeUnauthorized)
			return
		}

		c.Set(authUserIDKey, user.ID)
		c.Set(authRoleKey, claims.Role)
		c.Next()
	}
}

func authUser(c *gin.Context) (primitive.ObjectID, domain.Role) {
	id, _ := c.Get(authUserIDKey)
	role, _ := c.Get(authRoleKey)
	uid, _ := id.(primitive.ObjectID)
	r, _ := role.(domain.Role)
	return uid, r
}
