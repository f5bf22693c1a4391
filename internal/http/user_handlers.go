package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/queue"
	"github.com/nirmitee/clinic-api/internal/security"
	"github.com/nirmitee/clinic-api/internal/storage"
)

type registerReq struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	UserName  string `json:"userName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// Register creates an inactive patient account and issues the first
// email-verification OTP. The handle and email are stored lowercased so the
// case-insensitive login lookup holds.
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	userName := strings.ToLower(strings.TrimSpace(in.UserName))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := h.Users.FindUserByUserName(c.Request.Context(), userName)
	if err != nil {
		internalError(c)
		return
	}
	if existing != nil {
		legacyError(c, CodeBadRequest, tr(c, "userAlreadyExist"))
		return
	}

	hash, err := security.HashPassword(strings.TrimSpace(in.Password))
	if err != nil {
		internalError(c)
		return
	}

	user := &domain.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		UserName:  userName,
		Email:     email,
		Password:  hash,
		Role:      domain.RolePatient,
		Status:    domain.StatusInactive,
	}
	if err := h.Users.CreateUser(c.Request.Context(), user); err != nil {
		// unique index race on userName lands here
		legacyError(c, CodeBadRequest, tr(c, "userAlreadyExist"))
		return
	}

	otp := security.NewOTP(h.OTPLength)
	expiry := time.Now().UTC().Add(h.OTPTTL)
	if err := h.Users.SetOTP(c.Request.Context(), user.ID, otp, expiry); err != nil {
		internalError(c)
		return
	}

	h.publishMail(c, email, queue.SubjectRegistration, queue.TemplateRegistration, map[string]string{
		"username": user.UserName,
		"appName":  h.AppName,
		"otp":      otp,
	})

	successNoData(c, CodeSuccess, tr(c, "otpSent"))
}

type verifyEmailReq struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,max=4"`
}

// VerifyEmail consumes the OTP and activates the account: verification
// timestamp, active status and OTP cleanup land in a single update so the
// code cannot be replayed.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var in verifyEmailReq
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
		errorNoData(c, tr(c, "invalidOtp"), CodeFail, nil)
		return
	}
	if user.CodeExpiry == nil || time.Now().After(*user.CodeExpiry) {
		errorNoData(c, tr(c, "otpExpired"), CodeFail, nil)
		return
	}

	if err := h.Users.MarkEmailVerified(c.Request.Context(), user.ID, time.Now().UTC()); err != nil {
		internalError(c)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "emailVerified"))
}

type resendOTPReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP replaces any outstanding code with a fresh one and mails it.
func (h *Handler) ResendOTP(c *gin.Context) {
	var in resendOTPReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !h.allow(c, "resend-otp", email) {
		return
	}

	user, err := h.Users.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil {
		errorNoData(c, tr(c, "userNotExist"), CodeFail, nil)
		return
	}

	otp := security.NewOTP(h.OTPLength)
	expiry := time.Now().UTC().Add(h.OTPTTL)
	if err := h.Users.SetOTP(c.Request.Context(), user.ID, otp, expiry); err != nil {
		internalError(c)
		return
	}

	h.publishMail(c, email, queue.SubjectResendOTP, queue.TemplateResendOTP, map[string]string{
		"username": user.UserName,
		"appName":  h.AppName,
		"otp":      otp,
	})

	successNoData(c, CodeSuccess, tr(c, "otpResendToEmail"))
}

// UserDetail returns the authenticated user's profile with a time-limited
// image URL.
func (h *Handler) UserDetail(c *gin.Context) {
	authID, _ := authUser(c)
	user, err := h.Users.FindUserByID(c.Request.Context(), authID)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil || user.Status != domain.StatusActive {
		errorNoData(c, tr(c, "userNotFound"), CodeBadRequest, nil)
		return
	}

	imageURL := ""
	if user.Image != "" {
		imageURL = h.Images.URL(c.Request.Context(), storage.ProfilePicDir+"/"+authID.Hex(), user.Image)
	}

	successData(c, gin.H{
		"_id":       user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"image":     imageURL,
		"role":      user.Role,
	}, CodeSuccess, tr(c, "userDetailsFetched"), nil)
}

type editProfileReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Image     *string `json:"image"`
}

// EditProfile patches the optional profile fields. A non-empty image is a
// base64 data URI: the previous object is removed and the new one uploaded
// under the user's profile-picture prefix.
func (h *Handler) EditProfile(c *gin.Context) {
	var in editProfileReq
	if err := c.ShouldBindJSON(&in); err != nil {
		legacyError(c, CodeBadRequest, tr(c, "validationError"))
		return
	}

	authID, _ := authUser(c)
	patch := domain.ProfilePatch{FirstName: in.FirstName, LastName: in.LastName}

	if in.Image != nil && *in.Image != "" {
		ext := storage.ExtensionFromDataURI(*in.Image)
		if ext == "" {
			legacyError(c, CodeBadRequest, tr(c, "validationError"))
			return
		}
		name := fmt.Sprintf("%d%s.%s", time.Now().Unix(), security.NewOTP(5), ext)
		dir := storage.ProfilePicDir + "/" + authID.Hex()

		current, err := h.Users.FindUserByID(c.Request.Context(), authID)
		if err == nil && current != nil && current.Image != "" {
			if err := h.Images.Remove(c.Request.Context(), dir, current.Image); err != nil {
				h.Log.Warn("old image removal failed", zap.Error(err))
			}
		}
		if err := h.Images.UploadBase64(c.Request.Context(), dir, name, *in.Image); err != nil {
			log.WithDD(c.Request.Context(), h.Log).Error("image upload failed", zap.Error(err))
			internalError(c)
			return
		}
		patch.Image = &name
	}

	if err := h.Users.UpdateProfile(c.Request.Context(), authID, patch); err != nil {
		internalError(c)
		return
	}

	successNoData(c, CodeSuccess, tr(c, "profileUpdated"))
}
