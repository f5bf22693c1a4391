package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/queue"
	"github.com/nirmitee/clinic-api/internal/security"
)

type loginReq struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and account-state preconditions, then issues a
// fresh session token. The write overwrites whatever token was stored
// before, silently invalidating any other session.
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	ident := strings.ToLower(strings.TrimSpace(in.UserName))
	if !h.allow(c, "login", ident) {
		return
	}

	user, err := h.Users.FindUserByIdentifier(c.Request.Context(), ident)
	if err != nil {
		log.WithDD(c.Request.Context(), h.Log).Error("login lookup failed", zap.Error(err))
		internalError(c)
		return
	}
	if user == nil {
		errorNoData(c, tr(c, "userNameOrEmailNotExist"), CodeFail, nil)
		return
	}

	// Unverified email fails before the password check so the client can
	// route straight to the verification screen.
	if user.EmailVerify == nil {
		errorNoData(c, tr(c, "emailNotVerified"), CodeBadRequest, gin.H{"emailVerify": user.EmailVerify})
		return
	}
	if user.Status != domain.StatusActive {
		errorNoData(c, tr(c, "accountIsInactive"), CodeFail, nil)
		return
	}
	if !security.CheckPassword(user.Password, strings.TrimSpace(in.Password)) {
		errorNoData(c, tr(c, "emailPasswordNotMatch"), CodeBadRequest, nil)
		return
	}

	token, err := security.MakeUserToken(h.JWTSecret, user.ID.Hex(), user.Role, h.TokenTTL)
	if err != nil {
		internalError(c)
		return
	}
	if err := h.Users.SetToken(c.Request.Context(), user.ID, token); err != nil {
		log.WithDD(c.Request.Context(), h.Log).Error("token persist failed", zap.Error(err))
		internalError(c)
		return
	}

	successData(c, user.AuthView(), CodeSuccess, tr(c, "loginSuccess"), map[string]any{"token": token})
}

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a password-reset OTP to an active account and mails
// it out of band.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var in forgotPasswordReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !h.allow(c, "forgot", email) {
		return
	}

	user, err := h.Users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil {
		errorNoData(c, tr(c, "emailNotExists"), CodeFail, nil)
		return
	}
	if user.Status != domain.StatusActive {
		errorNoData(c, tr(c, "accountIsInactive"), CodeFail, nil)
		return
	}

	otp := security.NewOTP(h.OTPLength)
	expiry := time.Now().UTC().Add(h.OTPTTL)
	if err := h.Users.SetOTP(c.Request.Context(), user.ID, otp, expiry); err != nil {
		internalError(c)
		return
	}

	h.publishMail(c, email, queue.SubjectForgotPassword, queue.TemplateForgotPassword, map[string]string{
		"appName": h.AppName,
		"otp":     otp,
	})

	// The OTP rides along in data; the historical client consumes it there.
	successData(c, otp, CodeSuccess, tr(c, "forgotPasswordEmailSendSuccess"), nil)
}

type resetPasswordReq struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword consumes a reset OTP and stores a new hash. The OTP fields
// are cleared in the same write, so the code is single-use.
func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetPasswordReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := h.Users.FindUserByEmailAndOTP(c.Request.Context(), email, in.OTP)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil {
		errorNoData(c, tr(c, "emailNotExist"), CodeBadRequest, nil)
		return
	}
	if user.CodeExpiry == nil || time.Now().After(*user.CodeExpiry) {
		errorNoData(c, tr(c, "otpExpired"), CodeBadRequest, nil)
		return
	}

	// A "new" password equal to the current one is rejected outright.
	if security.CheckPassword(user.Password, in.Password) {
		errorNoData(c, tr(c, "oldPasswordNotAllowed"), CodeBadRequest, nil)
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		internalError(c)
		return
	}
	if err := h.Users.UpdatePassword(c.Request.Context(), user.ID, hash, true); err != nil {
		internalError(c)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "passwordResetSuccessfully"))
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// ChangePassword verifies the old password for the authenticated user and
// stores a new hash.
func (h *Handler) ChangePassword(c *gin.Context) {
	var in changePasswordReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	authID, _ := authUser(c)
	user, err := h.Users.FindUserByID(c.Request.Context(), authID)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil {
		errorNoData(c, tr(c, "userNotExist"), CodeBadRequest, nil)
		return
	}
	if !security.CheckPassword(user.Password, in.OldPassword) {
		errorNoData(c, tr(c, "oldPasswordIncorrect"), CodeBadRequest, nil)
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		internalError(c)
		return
	}
	if err := h.Users.UpdatePassword(c.Request.Context(), user.ID, hash, false); err != nil {
		internalError(c)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "passwordChangedSuccessfully"))
}

type logoutReq struct {
	UserID string `json:"user_id" binding:"required"`
}

// Logout nulls the stored session token for the named user; any outstanding
// token stops matching on the next protected request.
func (h *Handler) Logout(c *gin.Context) {
	var in logoutReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	if err := h.Users.ClearTokenByUserName(c.Request.Context(), strings.TrimSpace(in.UserID)); err != nil {
		internalError(c)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "logout"))
}
