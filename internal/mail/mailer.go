// Package mail is the outbound notification boundary. The core treats
// delivery as fire-and-forget except where a send failure triggers a
// compensating rollback (signup verification, password reset issuance).
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"sync"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP sends through a plain SMTP relay.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (m *SMTP) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: Support <" + m.From + ">",
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}

// Recorder captures sends for tests; FailWith forces delivery errors.
type Recorder struct {
	mu       sync.Mutex
	Sent     []RecordedMail
	FailWith error
}

type RecordedMail struct {
	To      string
	Subject string
	Body    string
}

func (r *Recorder) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.Sent = append(r.Sent, RecordedMail{To: to, Subject: subject, Body: body})
	return nil
}
