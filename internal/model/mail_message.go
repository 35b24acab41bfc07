package model

const (
	MailStatusPending = "pending"
	MailStatusSent    = "sent"
	MailStatusDead    = "dead"
)

// MailMessage is a row in the outbox. Delivery is best-effort at-least-once:
// rows stay pending until a dispatch run sends them or gives up.
type MailMessage struct {
	ID            string `json:"id"`
	Recipient     string `json:"recipient"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Attempts      int    `json:"attempts"`
	Status        string `json:"status"`
	Ctime         int64  `json:"ctime"`
	NextAttemptAt int64  `json:"next_attempt_at"`
}
