package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.observe("users.create", func() error {
		_, e := s.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if code, constraint := pgCode(err); code == pgUniqueViolation {
			if constraint == "users_pkey" {
				return user.User{}, user.ErrIDTaken
			}
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (u user.User, err error) {
	err = s.observe("users.get_by_id", func() error {
		u, err = scanUser(s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = s.observe("users.get_by_email", func() error {
		u, err = scanUser(s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) (users []user.User, err error) {
	var rows pgx.Rows

	err = s.observe("users.list", func() error {
		rows, err = s.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users = make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) CountAdmins(ctx context.Context) (n int, err error) {
	err = s.observe("users.count_admins", func() error {
		return s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&n)
	})
	return n, err
}

// lockForGuard locks every admin row, then the target row, and returns the
// target plus the admin count as seen under those locks.
func lockForGuard(ctx context.Context, tx pgx.Tx, id string) (user.User, int, error) {
	var admins int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT id FROM users WHERE role = 'admin' ORDER BY id FOR UPDATE
		) locked`).Scan(&admins)
	if err != nil {
		return user.User{}, 0, err
	}

	target, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, 0, user.ErrNotFound
		}
		return user.User{}, 0, err
	}

	return target, admins, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch user.Patch, guard user.Guard) (updated user.User, err error) {
	err = s.observe("users.update", func() error {
		return s.inTx(ctx, func(tx pgx.Tx) error {
			target, admins, err := lockForGuard(ctx, tx, id)
			if err != nil {
				return err
			}

			if guard != nil {
				if err := guard(target, admins); err != nil {
					return err
				}
			}

			updated, err = scanUser(tx.QueryRow(ctx, `
				UPDATE users
				SET name = $2,
					role = $3,
					updated_at = NOW()
				WHERE id = $1
				RETURNING `+userColumns,
				id, patch.Name, patch.Role,
			))
			return err
		})
	})

	if err != nil {
		return user.User{}, err
	}
	return updated, nil
}

// DeleteUser relies on ON DELETE CASCADE to drop the user's vouchers.
func (s *Store) DeleteUser(ctx context.Context, id string, guard user.Guard) error {
	return s.observe("users.delete", func() error {
		return s.inTx(ctx, func(tx pgx.Tx) error {
			target, admins, err := lockForGuard(ctx, tx, id)
			if err != nil {
				return err
			}

			if guard != nil {
				if err := guard(target, admins); err != nil {
					return err
				}
			}

			tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return user.ErrNotFound
			}
			return nil
		})
	})
}
