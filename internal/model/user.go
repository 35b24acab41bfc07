package model

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	Ctime        int64  `json:"-"`
	Mtime        int64  `json:"-"`
}
