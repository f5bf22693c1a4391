// Package i18n holds the catalog of user-facing messages. Handlers never
// hardcode strings: they resolve a key against the request locale so the
// mobile client can ship additional languages without an API change.
package i18n

var catalogs = map[string]map[string]string{
	"en": en,
}

var en = map[string]string{
	"userNameOrEmailNotExist":        "Username or email does not exist",
	"emailNotVerified":               "Please verify your email to continue",
	"accountIsInactive":              "Your account is inactive",
	"accountBlocked":                 "Your account has been blocked",
	"emailPasswordNotMatch":          "Email and password do not match",
	"loginSuccess":                   "Logged in successfully",
	"logout":                         "Logged out successfully",
	"internalError":                  "Something went wrong, please try again later",
	"validationError":                "Invalid request parameters",
	"tooManyRequests":                "Too many requests, please try again later",
	"authorizationError":             "Authorization header is missing",
	"invalidToken":                   "Invalid or expired token",
	"userAlreadyExist":               "User already exists with this username",
	"otpSent":                        "OTP has been sent to your email",
	"otpResendToEmail":               "A new OTP has been sent to your email",
	"emailVerified":                  "Email verified successfully",
	"invalidOtp":                     "Invalid OTP",
	"otpExpired":                     "OTP has expired, please request a new one",
	"emailNotExist":                  "Email does not exist",
	"emailNotExists":                 "Email does not exist",
	"forgotPasswordEmailSendSuccess": "Password reset OTP has been sent to your email",
	"oldPasswordNotAllowed":          "New password must differ from the old password",
	"passwordResetSuccessfully":      "Password has been reset successfully",
	"oldPasswordIncorrect":           "Old password is incorrect",
	"passwordChangedSuccessfully":    "Password changed successfully",
	"userNotExist":                   "User does not exist",
	"userNotFound":                   "User not found",
	"userDetailsFetched":             "User details fetched successfully",
	"profileUpdated":                 "Profile updated successfully",
	"appointmentCreated":             "Appointment created successfully",
	"appointmentUpdated":             "Appointment updated successfully",
	"appointmentNotFound":            "Appointment not found",
	"success":                        "Success",
}

// T resolves key for the given locale, falling back to English and finally to
// the key itself so a missing entry never renders an empty message.
func T(locale, key string) string {
	if m, ok := catalogs[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := en[key]; ok {
		return s
	}
	return key
}
