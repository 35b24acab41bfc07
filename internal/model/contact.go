package model

// Contact is an owned record. UserID is stamped at creation and never
// changes; every read and write is scoped to it.
type Contact struct {
	ID             string `json:"id"`
	UserID         string `json:"-"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Birthday       string `json:"birthday"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	Ctime          int64  `json:"-"`
	Mtime          int64  `json:"-"`
}
