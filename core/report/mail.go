package report

import (
	"bytes"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

// SendRequest asks for the last report to be emailed.
type SendRequest struct {
	To     []string `json:"to" validate:"required,min=1,dive,email"`
	Format string   `json:"format" validate:"omitempty,oneof=json csv xlsx"`
}

func (sr *SendRequest) Validate(validate *validator.Validate) error {
	to := make([]string, 0, len(sr.To))
	for _, addr := range sr.To {
		if addr = core.CleanString(addr); addr != "" {
			to = append(to, addr)
		}
	}
	sr.To = to
	sr.Format = core.CleanString(sr.Format, true /* lower */)
	if sr.Format == "" {
		sr.Format = FormatXLSX
	}
	return validate.Struct(sr)
}

// Mailer emails exported reports.
type Mailer struct {
	svc   *Service
	email core.EmailService
}

func NewMailer(svc *Service, email core.EmailService) *Mailer {
	return &Mailer{svc: svc, email: email}
}

// SendLast emails the last generated report, exported in the requested format, as an attachment.
// Delivery is asynchronous: only building the message can fail.
func (m *Mailer) SendLast(sr SendRequest) ([]mail.Address, error) {
	to, err := core.ParseAddresses(sr.To...)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, core.NewMissingError("to")
	}
	r, err := m.svc.Last()
	if err != nil {
		return nil, err
	}

	format := sr.Format
	if format == "" {
		format = FormatXLSX
	}
	var buf bytes.Buffer
	if err = Export(&buf, r, format); err != nil {
		return nil, errors.Wrap(err, "exporting report")
	}

	msg := &core.EmailMessage{
		To:      to,
		Subject: r.Title,
		Body:    messageBody(r),
	}
	if err = msg.Attach(&buf, Filename(r, format), ContentType(format)); err != nil {
		return nil, err
	}
	m.email.SendMessages(msg)
	return to, nil
}

func messageBody(r Report) string {
	return fmt.Sprintf(
		"Hello,\n\nPlease find attached the %s generated on %s.\n",
		r.Title, r.GeneratedAt.Format("2006-01-02 at 15:04 MST"),
	)
}
