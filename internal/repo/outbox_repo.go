package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/olekhv/contactbook/internal/model"
	"github.com/olekhv/contactbook/internal/pkg/dbutil"
	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
)

var outboxColumns = []string{"id", "recipient", "subject", "body", "attempts", "status", "ctime", "next_attempt_at"}

type OutboxRepo struct {
	db *sql.DB
}

func NewOutboxRepo(db *sql.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

func (r *OutboxRepo) Enqueue(ctx context.Context, msg *model.MailMessage) error {
	data := map[string]interface{}{
		"id":              msg.ID,
		"recipient":       msg.Recipient,
		"subject":         msg.Subject,
		"body":            msg.Body,
		"attempts":        msg.Attempts,
		"status":          msg.Status,
		"ctime":           msg.Ctime,
		"next_attempt_at": msg.NextAttemptAt,
	}
	sqlStr, args, err := builder.BuildInsert("mail_outbox", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListDue returns pending messages whose next attempt time has passed.
func (r *OutboxRepo) ListDue(ctx context.Context, now int64, limit uint) ([]model.MailMessage, error) {
	where := map[string]interface{}{
		"status":             model.MailStatusPending,
		"next_attempt_at <=": now,
		"_orderby":           "next_attempt_at asc",
		"_limit":             []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("mail_outbox", where, outboxColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	msgs := make([]model.MailMessage, 0)
	for rows.Next() {
		var msg model.MailMessage
		if err := rows.Scan(&msg.ID, &msg.Recipient, &msg.Subject, &msg.Body,
			&msg.Attempts, &msg.Status, &msg.Ctime, &msg.NextAttemptAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"status": model.MailStatusSent})
}

// MarkFailed bumps the attempt counter and either reschedules the message or
// marks it dead once it runs out of attempts.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, attempts int, dead bool, nextAttemptAt int64) error {
	update := map[string]interface{}{
		"attempts":        attempts,
		"next_attempt_at": nextAttemptAt,
	}
	if dead {
		update["status"] = model.MailStatusDead
	}
	return r.update(ctx, id, update)
}

func (r *OutboxRepo) update(ctx context.Context, id string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildUpdate("mail_outbox", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
