package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/numsphere/internal/identity/entity"
)

func (s *DB) NewRegistration(ctx context.Context, user entity.NewUser, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, `
INSERT INTO identity_users (id, email, full_name, status, credits)
VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.FullName, int16(user.Status), user.Credits,
	); err != nil {
		err = s.mapError(err)
		return err
	}

	if _, err = tx.Exec(ctx, `
INSERT INTO identity_user_credentials (user_id, password)
VALUES ($1, $2)`,
		user.ID, hash,
	); err != nil {
		err = s.mapError(err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = s.mapError(err)
		return err
	}

	return nil
}
