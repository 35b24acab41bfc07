package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/olekhv/contactbook/internal/model"
	"github.com/olekhv/contactbook/internal/pkg/dbutil"
	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
)

var contactColumns = []string{"id", "user_id", "first_name", "last_name", "email", "phone_number", "birthday", "additional_info", "ctime", "mtime"}

type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	data := map[string]interface{}{
		"id":              contact.ID,
		"user_id":         contact.UserID,
		"first_name":      contact.FirstName,
		"last_name":       contact.LastName,
		"email":           contact.Email,
		"phone_number":    contact.PhoneNumber,
		"birthday":        contact.Birthday,
		"additional_info": contact.AdditionalInfo,
		"ctime":           contact.Ctime,
		"mtime":           contact.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("contacts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID looks up a contact by id and owner in one predicate, so a missing
// row and another user's row are indistinguishable.
func (r *ContactRepo) GetByID(ctx context.Context, userID, contactID string) (*model.Contact, error) {
	where := map[string]interface{}{"id": contactID, "user_id": userID}
	sqlStr, args, err := builder.BuildSelect("contacts", where, contactColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	contact, err := scanContact(rows)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *ContactRepo) ListByUser(ctx context.Context, userID string) ([]model.Contact, error) {
	where := map[string]interface{}{"user_id": userID, "_orderby": "ctime asc"}
	sqlStr, args, err := builder.BuildSelect("contacts", where, contactColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	contacts := make([]model.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

func (r *ContactRepo) Update(ctx context.Context, userID, contactID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	where := map[string]interface{}{"id": contactID, "user_id": userID}
	sqlStr, args, err := builder.BuildUpdate("contacts", where, fields)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
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

func (r *ContactRepo) Delete(ctx context.Context, userID, contactID string) error {
	where := map[string]interface{}{"id": contactID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("contacts", where)
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

func scanContact(rows *sql.Rows) (*model.Contact, error) {
	var contact model.Contact
	if err := rows.Scan(&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.PhoneNumber, &contact.Birthday, &contact.AdditionalInfo,
		&contact.Ctime, &contact.Mtime); err != nil {
		return nil, err
	}
	return &contact, nil
}
