package job

import (
	"context"

	"github.com/olekhv/contactbook/internal/service"
)

// MailDispatchJob drains the mail outbox on the scheduler's cadence.
type MailDispatchJob struct {
	mailer *service.MailerService
}

func NewMailDispatchJob(mailer *service.MailerService) *MailDispatchJob {
	return &MailDispatchJob{mailer: mailer}
}

func (j *MailDispatchJob) Name() string {
	return "mail_dispatch"
}

func (j *MailDispatchJob) Run(ctx context.Context) error {
	if j.mailer == nil {
		return nil
	}
	return j.mailer.Dispatch(ctx)
}
