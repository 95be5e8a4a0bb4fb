package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

type SMTPClient struct {
	fromEmail string
	dialer    *gomail.Dialer
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (*SMTPClient, error) {
	if host == "" {
		return nil, errors.New("smtp host is required")
	}
	return &SMTPClient{
		fromEmail: fromEmail,
		dialer:    gomail.NewDialer(host, port, username, password),
	}, nil
}

// Send renders the named template's subject and body blocks and delivers
// the mail, retrying transient failures.
func (c *SMTPClient) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, fmt.Errorf("parse template %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, fmt.Errorf("render subject: %w", err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, fmt.Errorf("render body: %w", err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(c.fromEmail, FromName))
	message.SetHeader("To", email)
	message.SetHeader("Subject", subject.String())
	message.SetBody("text/html", body.String())

	var lastErr error
	for i := 0; i < maxRetires; i++ {
		if lastErr = c.dialer.DialAndSend(message); lastErr == nil {
			return 200, nil
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return -1, fmt.Errorf("send mail to %s after %d attempts: %w", email, maxRetires, lastErr)
}
