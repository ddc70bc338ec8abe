package notifysvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/mtihani/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// EmailSink mails a short completion report to the staff address through SendGrid.
type EmailSink struct {
	key        string
	from       *sgmail.Email
	to         *sgmail.Email
	subjPrefix string
}

func NewEmailSink(conf *core.Config) *EmailSink {
	return &EmailSink{
		key:        conf.Notify.SendgridAPIKey,
		from:       sgmail.NewEmail(conf.AppName, conf.Notify.FromEmail),
		to:         sgmail.NewEmail("", conf.Notify.StaffEmail),
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) prepare(evt core.QuizCompleted) *sgmail.SGMailV3 {
	who := evt.Username
	if who == "" {
		who = evt.RespondentID
	}
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + fmt.Sprintf("%s completed a quiz", who)
	p.AddTos(s.to)

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", fmt.Sprintf(
		"%s completed quiz %s on %s.\r\nScore: %d/%d correct (%d%%), %d incorrect.\r\n",
		who, evt.QuizID, evt.CompletedAt.Format("2006-01-02 15:04 MST"),
		evt.Correct, evt.Total, evt.Percentage, evt.Incorrect,
	)))
	return m
}

func (s *EmailSink) Send(ctx context.Context, evt core.QuizCompleted) error {
	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(evt))

	res, err := send(ctx, req)
	if err != nil {
		return errors.Wrap(err, "sending email")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
