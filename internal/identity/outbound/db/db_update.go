package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

// ActivateUser moves an unverified user to active. It returns goerror.ErrNotFound
// when no unverified user has that id.
func (s *DB) ActivateUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "ActivateUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE identity_users SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = $3`,
		id, int16(entity.UserStatusActive), int16(entity.UserStatusUnverified),
	)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}

func (s *DB) UpdateLastLogin(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateLastLogin")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `UPDATE identity_users SET last_login_at = $2 WHERE id = $1`, id, at)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateUserCredential(ctx context.Context, id int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserCredential")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE identity_user_credentials SET password = $2, updated_at = NOW()
WHERE user_id = $1`, id, hash)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
