package utils

import (
	"eduwallet/config"
	"fmt"
	"net/smtp"
	"strings"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: EduWallet <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// SendCreditingFailureAlert notifies the ops mailbox that a confirmed deposit
// could not be credited and needs manual follow-up.
func SendCreditingFailureAlert(txHash string, reason string) {
	alertEmail := config.AppConfig.AlertEmail
	if alertEmail == "" {
		return
	}

	subject := "EduWallet: crediting failed for confirmed deposit"
	body := fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #dc2626;">Crediting Failure</h2>
			<p>Transaction <strong>%s</strong> was confirmed on chain but its crediting side effects failed.</p>
			<p>Reason: %s</p>
			<p>The transaction is marked credited; verify the mint and reward statistics manually.</p>
		</div>
	</body>
	</html>`, txHash, reason)

	go SendEmail([]string{alertEmail}, subject, body)
}
