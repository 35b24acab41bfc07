package service

import (
	"context"

	"github.com/olekhv/contactbook/internal/model"
	"github.com/olekhv/contactbook/internal/pkg/timeutil"
	"github.com/olekhv/contactbook/internal/repo"
)

type ContactService struct {
	contacts *repo.ContactRepo
}

func NewContactService(contacts *repo.ContactRepo) *ContactService {
	return &ContactService{contacts: contacts}
}

type ContactCreateInput struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       string
	AdditionalInfo string
}

// ContactPatch distinguishes absent fields (nil) from supplied ones. Note
// that the merge below still skips empty values even when supplied, matching
// the long-standing update contract.
type ContactPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *string
	AdditionalInfo *string
}

// fields builds the column update map, skipping fields that are absent or
// empty. An empty string is indistinguishable from "not supplied" here; a
// client cannot blank out a field through this path.
func (p ContactPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	set := func(column string, value *string) {
		if value != nil && *value != "" {
			fields[column] = *value
		}
	}
	set("first_name", p.FirstName)
	set("last_name", p.LastName)
	set("email", p.Email)
	set("phone_number", p.PhoneNumber)
	set("birthday", p.Birthday)
	set("additional_info", p.AdditionalInfo)
	return fields
}

// Create stamps the new contact with the caller's user id; any owner supplied
// by the request is ignored.
func (s *ContactService) Create(ctx context.Context, userID string, in ContactCreateInput) (*model.Contact, error) {
	now := timeutil.NowUnix()
	contact := &model.Contact{
		ID:             newID(),
		UserID:         userID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
		Ctime:          now,
		Mtime:          now,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, userID string) ([]model.Contact, error) {
	return s.contacts.ListByUser(ctx, userID)
}

func (s *ContactService) Get(ctx context.Context, userID, contactID string) (*model.Contact, error) {
	return s.contacts.GetByID(ctx, userID, contactID)
}

func (s *ContactService) Update(ctx context.Context, userID, contactID string, patch ContactPatch) (*model.Contact, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return s.contacts.GetByID(ctx, userID, contactID)
	}
	fields["mtime"] = timeutil.NowUnix()
	if err := s.contacts.Update(ctx, userID, contactID, fields); err != nil {
		return nil, err
	}
	return s.contacts.GetByID(ctx, userID, contactID)
}

func (s *ContactService) Delete(ctx context.Context, userID, contactID string) error {
	return s.contacts.Delete(ctx, userID, contactID)
}
