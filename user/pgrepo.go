package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgUserRepo struct {
	pool *pgxpool.Pool
}

func NewPgUserRepo(pool *pgxpool.Pool) *pgUserRepo {
	return &pgUserRepo{pool: pool}
}

const selectUserCols = `uuid, firstname, lastname, username, email, bcrypt_pwd, role, created_at`

func scanUser(row pgx.Row) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.UUID,
		&u.Firstname,
		&u.Lastname,
		&u.Username,
		&u.Email,
		&u.BcryptPwd,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return userRow{}, errNoUser
	}
	return u, err
}

func (r *pgUserRepo) InsertUser(ctx context.Context, u userRow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (uuid, firstname, lastname, username, email, bcrypt_pwd, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		u.UUID,
		u.Firstname,
		u.Lastname,
		u.Username,
		u.Email,
		u.BcryptPwd,
		u.Role,
		u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetUserByUUID(ctx context.Context, userUuid uuid.UUID) (userRow, error) {
	q := `SELECT ` + selectUserCols + ` FROM users WHERE uuid = $1`
	return scanUser(r.pool.QueryRow(ctx, q, userUuid))
}

func (r *pgUserRepo) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	q := `SELECT ` + selectUserCols + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, q, username))
}

func (r *pgUserRepo) ExistsUsernameOrEmail(ctx context.Context, username string, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	err := r.pool.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE username = $1),
			EXISTS (SELECT 1 FROM users WHERE email = $2)
	`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

func (r *pgUserRepo) RewriteRole(ctx context.Context, from string, to string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE role = $1`, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite role %q: %w", from, err)
	}
	return tag.RowsAffected(), nil
}
