package core

import (
	"io"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
)

type (
	Attachment struct {
		Content     []byte
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Subject     string
		Body        string // text/plain
		Attachments []Attachment
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Attach reads `r` fully and adds it as an attachment.
func (m *EmailMessage) Attach(r io.Reader, filename, contentType string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading attachment %s", filename)
	}
	m.Attachments = append(m.Attachments, Attachment{
		Content:     content,
		ContentType: contentType,
		Filename:    filename,
	})
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return m.Body != "" }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// ParseAddresses parses each of `addrs` as an RFC 5322 address ("Name <x@y.z>" or "x@y.z").
func ParseAddresses(addrs ...string) ([]mail.Address, error) {
	res := make([]mail.Address, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		addr, err := mail.ParseAddress(a)
		if err != nil {
			return nil, NewValidationError(
				errors.Wrapf(err, "parsing address %q", a),
				FieldError{Field: "to", Error: "invalid email address: " + a},
			)
		}
		res = append(res, *addr)
	}
	return res, nil
}
