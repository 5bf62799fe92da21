package emailsvc

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/shuleboard/core"
)

// New returns the EmailService of the configured backend.
func New(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	switch conf.Email.Backend {
	case "", "console":
		return NewConsoleService(conf, log.New(os.Stdout, "EMAIL : ", log.LstdFlags), logger), nil
	case "sendgrid":
		if conf.Email.SendgridApiKey == "" {
			return nil, errors.New("sendgrid backend requires a sendgridApiKey")
		}
		return NewSendgridService(conf, logger), nil
	}
	return nil, errors.Errorf("unknown email backend %q", conf.Email.Backend)
}

// Wait blocks until `svc` is done sending, for services that send in the background.
func Wait(svc core.EmailService) {
	if w, ok := svc.(interface{ Wait() }); ok {
		w.Wait()
	}
}
