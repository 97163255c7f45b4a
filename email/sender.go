package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"
)

// Config is the SMTP endpoint used for manager notification mail.
type Config struct {
	SMTPServer   string
	SMTPPort     int
	Username     string
	Password     string
	FromName     string
	FromEmail    string
	TLSEnabled   bool
	SkipTLSCheck bool
}

type Message struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
	IsHTML  bool
}

// FromEnv builds the SMTP config from the environment. The second return
// is false when mail is not configured.
func FromEnv() (Config, bool) {
	server := os.Getenv("SMTP_SERVER")
	if server == "" {
		return Config{}, false
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return Config{
		SMTPServer: server,
		SMTPPort:   port,
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		FromName:   "FleetGuard",
		FromEmail:  os.Getenv("SMTP_FROM"),
		TLSEnabled: os.Getenv("SMTP_TLS") != "false",
	}, true
}

// SendEmail sends one message through the configured SMTP server.
func SendEmail(config Config, message Message) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", config.FromName, config.FromEmail)
	headers["To"] = strings.Join(message.To, ", ")
	headers["Subject"] = message.Subject

	if len(message.CC) > 0 {
		headers["Cc"] = strings.Join(message.CC, ", ")
	}
	if message.IsHTML {
		headers["MIME-Version"] = "1.0"
		headers["Content-Type"] = "text/html; charset=UTF-8"
	} else {
		headers["Content-Type"] = "text/plain; charset=UTF-8"
	}

	var messageBody strings.Builder
	for key, value := range headers {
		messageBody.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	messageBody.WriteString("\r\n")
	messageBody.WriteString(message.Body)

	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)

	var recipients []string
	recipients = append(recipients, message.To...)
	recipients = append(recipients, message.CC...)
	recipients = append(recipients, message.BCC...)

	serverAddr := fmt.Sprintf("%s:%d", config.SMTPServer, config.SMTPPort)

	if config.TLSEnabled {
		tlsConfig := &tls.Config{
			ServerName:         config.SMTPServer,
			InsecureSkipVerify: config.SkipTLSCheck,
		}

		conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, config.SMTPServer)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
		if err := client.Mail(config.FromEmail); err != nil {
			return fmt.Errorf("SMTP MAIL failed: %w", err)
		}
		for _, recipient := range recipients {
			if err := client.Rcpt(recipient); err != nil {
				return fmt.Errorf("SMTP RCPT for %s failed: %w", recipient, err)
			}
		}
		writer, err := client.Data()
		if err != nil {
			return fmt.Errorf("SMTP DATA failed: %w", err)
		}
		if _, err := writer.Write([]byte(messageBody.String())); err != nil {
			return fmt.Errorf("writing message body failed: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing message body failed: %w", err)
		}
		return client.Quit()
	}

	return smtp.SendMail(serverAddr, auth, config.FromEmail, recipients, []byte(messageBody.String()))
}
