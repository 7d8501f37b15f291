package notification

import (
	"fmt"
	"time"
)

const brand = "BRACU Placement Hub"

// Message is a rendered email ready for a Sender.
type Message struct {
	Subject string
	Body    string
}

// SignupCode is sent when an account registration starts.
func SignupCode(code string, ttl time.Duration) Message {
	return Message{
		Subject: "Verify Your Email - " + brand,
		Body: fmt.Sprintf("Welcome to %s!\n\nYour verification code is: %s\n\nThis code will expire in %s.",
			brand, code, minutes(ttl)),
	}
}

// ResentSignupCode replaces a previously sent signup code.
func ResentSignupCode(code string, ttl time.Duration) Message {
	return Message{
		Subject: "New Verification Code - " + brand,
		Body:    fmt.Sprintf("Your new verification code is: %s\n\nThis code will expire in %s.", code, minutes(ttl)),
	}
}

// PasswordResetCode is sent on a forgot-password request.
func PasswordResetCode(code string, ttl time.Duration) Message {
	return Message{
		Subject: "Password Reset - " + brand,
		Body: fmt.Sprintf("You requested to reset your password.\n\nYour verification code is: %s\n\nThis code will expire in %s.",
			code, minutes(ttl)),
	}
}

func minutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
