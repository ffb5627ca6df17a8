package mailer

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const signature = "Regards,\nThe Lost and Found Team"

func OTPMessage(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Your OTP Code",
		Body:    fmt.Sprintf("Your OTP is: %s\nIt will expire in %d minutes.", code, int(ttl.Minutes())),
	}
}

// ResetLinkMessage builds the reset email. The token is appended to base as
// the "token" query parameter.
func ResetLinkMessage(to, base, token string) Message {
	link := base
	if u, err := url.Parse(base); err == nil {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		link = u.String()
	}
	return Message{
		To:      to,
		Subject: "Password Reset Link",
		Body:    "Click below to reset your password:\n" + link,
	}
}

func ClaimDecisionMessage(to, name, item, status string) Message {
	next := "If you believe this is an error, please contact the administrator for more information."
	if strings.EqualFold(status, "APPROVED") {
		next = "Please contact the administrator to arrange for item collection."
	}
	return Message{
		To:      to,
		Subject: "Update on Your Claim Request",
		Body: fmt.Sprintf("Dear %s,\n\nYour claim request for the item '%s' has been %s.\n\n%s\n\n"+
			"Thank you for using our Lost and Found system.\n\n%s", name, item, status, next, signature),
	}
}

func ClaimRollbackMessage(to, name, item string) Message {
	return Message{
		To:      to,
		Subject: "Your Claim Request Status Has Changed",
		Body: fmt.Sprintf("Dear %s,\n\nThe status of your claim request for the item '%s' has been reset to PENDING.\n\n"+
			"An administrator will review your claim again.\n\nThank you for your patience.\n\n%s", name, item, signature),
	}
}
