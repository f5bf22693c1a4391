package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// Plain-text bodies for the three transactional mails. Keys match the
// template names carried on MailRequested events.
var templates = map[string]*template.Template{
	"newRegistration": template.Must(template.New("newRegistration").Parse(
		"Hi {{.username}},\n\n" +
			"Welcome to {{.appName}}! Use the code below to verify your email address:\n\n" +
			"    {{.otp}}\n\n" +
			"The code expires in 10 minutes.\n",
	)),
	"resendOtp": template.Must(template.New("resendOtp").Parse(
		"Hi {{.username}},\n\n" +
			"Here is your new {{.appName}} verification code:\n\n" +
			"    {{.otp}}\n\n" +
			"The code expires in 10 minutes.\n",
	)),
	"forgotPassword": template.Must(template.New("forgotPassword").Parse(
		"Hi,\n\n" +
			"We received a request to reset your {{.appName}} password. " +
			"Use the code below to continue:\n\n" +
			"    {{.otp}}\n\n" +
			"If you did not request this, you can ignore this email.\n",
	)),
}

// Render expands the named template with locals into a plain-text body.
func Render(name string, locals map[string]string) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown mail template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, locals); err != nil {
		return "", err
	}
	return buf.String(), nil
}
