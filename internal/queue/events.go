package queue

// MailRequested asks the notify worker to render a template and deliver it.
// Locals carries the template variables (appName, username, otp).
type MailRequested struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Locals   map[string]string `json:"locals"`
}

// Mail subjects and template names shared by the API and the worker.
const (
	SubjectRegistration   = "Welcome to Our Platform - Registration Successful"
	SubjectResendOTP      = "New OTP for verification"
	SubjectForgotPassword = "Password Reset Request"

	TemplateRegistration   = "newRegistration"
	TemplateResendOTP      = "resendOtp"
	TemplateForgotPassword = "forgotPassword"
)
