package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userColumns = `id, email, username, profile_pic, role, created_at`

func (s *PostgresStore) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
INSERT INTO users (id, email, username, password_hash, profile_pic, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+userColumns,
		uuid.New(), p.Email, p.Username, p.PasswordHash, p.ProfilePic, RoleUser, time.Now().UTC(),
	).Scan(&u.ID, &u.Email, &u.Username, &u.ProfilePic, &u.Role, &u.CreatedAt)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) FindUserByLogin(ctx context.Context, login string) (User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, "", ErrNotFound
	}
	var u User
	var hash string
	err := s.db.QueryRow(ctx, `
SELECT `+userColumns+`, password_hash
FROM users
WHERE lower(email) = lower($1) OR lower(username) = lower($1)
LIMIT 1`, login,
	).Scan(&u.ID, &u.Email, &u.Username, &u.ProfilePic, &u.Role, &u.CreatedAt, &hash)
	if err != nil {
		return User{}, "", mapNoRows(err)
	}
	return u, hash, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (User, error) {
	uid, err := parseID(id)
	if err != nil {
		return User{}, err
	}
	var u User
	err = s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uid,
	).Scan(&u.ID, &u.Email, &u.Username, &u.ProfilePic, &u.Role, &u.CreatedAt)
	if err != nil {
		return User{}, mapNoRows(err)
	}
	return u, nil
}

func (s *PostgresStore) SetUserRole(ctx context.Context, id, role string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, uid, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, id string, p ProfileUpdate) (User, error) {
	uid, err := parseID(id)
	if err != nil {
		return User{}, err
	}
	var u User
	err = s.db.QueryRow(ctx, `
UPDATE users SET
  username    = COALESCE(NULLIF($2, ''), username),
  email       = COALESCE(NULLIF($3, ''), email),
  profile_pic = COALESCE($4, profile_pic)
WHERE id = $1
RETURNING `+userColumns,
		uid, p.Username, p.Email, p.ProfilePic,
	).Scan(&u.ID, &u.Email, &u.Username, &u.ProfilePic, &u.Role, &u.CreatedAt)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return User{}, ErrAlreadyExists
		}
		return User{}, mapNoRows(err)
	}
	return u, nil
}

func (s *PostgresStore) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, uid, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UserPasswordHash(ctx context.Context, id string) (string, error) {
	uid, err := parseID(id)
	if err != nil {
		return "", err
	}
	var hash string
	err = s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, uid).Scan(&hash)
	if err != nil {
		return "", mapNoRows(err)
	}
	return hash, nil
}
