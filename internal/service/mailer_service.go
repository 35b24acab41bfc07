package service

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/model"
	"github.com/olekhv/contactbook/internal/pkg/logutil"
	"github.com/olekhv/contactbook/internal/pkg/timeutil"
	"github.com/olekhv/contactbook/internal/repo"
)

const dispatchBatchSize = 50

// MailerService is the best-effort notification path. Enqueue writes the
// message into the outbox inside the request; Dispatch runs from the
// scheduler and drains due rows, so an SMTP outage never surfaces to an HTTP
// caller.
type MailerService struct {
	outbox      *repo.OutboxRepo
	sender      EmailSender
	maxAttempts int
	md          goldmark.Markdown
}

func NewMailerService(outbox *repo.OutboxRepo, sender EmailSender, maxAttempts int) *MailerService {
	return &MailerService{
		outbox:      outbox,
		sender:      sender,
		maxAttempts: maxAttempts,
		md:          goldmark.New(),
	}
}

// EnqueueMarkdown renders the Markdown template to HTML and stores the
// message for delivery.
func (s *MailerService) EnqueueMarkdown(ctx context.Context, to, subject, markdown string) error {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return err
	}
	now := timeutil.NowUnix()
	return s.outbox.Enqueue(ctx, &model.MailMessage{
		ID:            newID(),
		Recipient:     to,
		Subject:       subject,
		Body:          buf.String(),
		Status:        model.MailStatusPending,
		Ctime:         now,
		NextAttemptAt: now,
	})
}

// Dispatch sends due messages. Failures bump the attempt counter with
// exponential backoff; after maxAttempts the row is marked dead.
func (s *MailerService) Dispatch(ctx context.Context) error {
	now := timeutil.NowUnix()
	msgs, err := s.outbox.ListDue(ctx, now, dispatchBatchSize)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, msg := range msgs {
		if err := s.sender.Send(msg.Recipient, msg.Subject, msg.Body); err != nil {
			attempts := msg.Attempts + 1
			dead := attempts >= s.maxAttempts
			backoff := int64(60) << uint(msg.Attempts)
			logger.Warn("mail delivery failed",
				zap.String("id", msg.ID),
				zap.String("recipient", msg.Recipient),
				zap.Int("attempts", attempts),
				zap.Bool("dead", dead),
				zap.Error(err),
			)
			if err := s.outbox.MarkFailed(ctx, msg.ID, attempts, dead, now+backoff); err != nil {
				return err
			}
			continue
		}
		if err := s.outbox.MarkSent(ctx, msg.ID); err != nil {
			return err
		}
	}
	return nil
}
