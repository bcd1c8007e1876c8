package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
)

const selectUser = `
SELECT id, email, full_name, status, credits, last_login_at, created_at
FROM identity_users
`

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*entity.User, error) {
	var (
		u         entity.User
		status    int16
		lastLogin *time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &status, &u.Credits, &lastLogin, &u.CreatedAt); err != nil {
		return nil, err
	}

	u.Status = entity.UserStatus(status)
	u.LastLoginAt = lastLogin
	return &u, nil
}

func (s *DB) GetUserLoginInfo(ctx context.Context, email string) (_ *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	var (
		info   entity.UserLoginInfo
		status int16
	)
	err = s.conn.QueryRow(ctx, `
SELECT u.id, u.email, u.status, c.password
FROM identity_users u
JOIN identity_user_credentials c ON c.user_id = u.id
WHERE u.email = $1`, email).Scan(&info.ID, &info.Email, &status, &info.Password)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	info.Status = entity.UserStatus(status)
	return &info, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, selectUser+"WHERE email = $1", email))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return user, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, selectUser+"WHERE id = $1", id))
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return user, nil
}
