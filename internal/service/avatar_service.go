package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/olekhv/contactbook/internal/filestore"
	"github.com/olekhv/contactbook/internal/pkg/timeutil"
	"github.com/olekhv/contactbook/internal/repo"
)

type AvatarService struct {
	users *repo.UserRepo
	store filestore.Store
}

func NewAvatarService(users *repo.UserRepo, store filestore.Store) *AvatarService {
	return &AvatarService{users: users, store: store}
}

// UpdateAvatar uploads the image to the configured object store and records
// the resulting URL on the user. baseURL is the server's public address,
// needed when the local store serves the file itself.
func (s *AvatarService) UpdateAvatar(ctx context.Context, userID string, r filestore.ReadSeekCloser, size int64, filename, baseURL string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	key := buildAvatarKey(user.ID, filename)
	if err := s.store.Save(ctx, key, r, size); err != nil {
		return "", err
	}
	avatarURL := s.store.URL(key, baseURL)
	if err := s.users.UpdateAvatar(ctx, user.ID, avatarURL, timeutil.NowUnix()); err != nil {
		return "", err
	}
	return avatarURL, nil
}

func (s *AvatarService) OpenFile(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	return s.store.Open(ctx, key)
}

func (s *AvatarService) StoreType() string {
	return s.store.Type()
}

func buildAvatarKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return userID + "_" + hex.EncodeToString(buf) + ext
}
