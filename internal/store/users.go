package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"modvault/internal/models"
)

func hashTokenRaw(t string) string {
	h := sha256.Sum256([]byte(t))
	return hex.EncodeToString(h[:])
}

func (s *Store) CreateUser(u *models.User, passwordHash string) (int64, error) {
	res, err := s.DB.Exec(`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`, u.Username, u.Email, passwordHash, u.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.DB.Get(&u, `SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = ?`, username); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(id int64) (*models.User, error) {
	var u models.User
	if err := s.DB.Get(&u, `SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// SaveToken records an issued token by its hash; the raw value is never
// stored.
func (s *Store) SaveToken(ownerUserID int64, rawToken string, scopes []string) error {
	_, err := s.DB.Exec(
		`INSERT INTO tokens (owner_user_id, token_hash, scopes, created_at) VALUES (?, ?, ?, ?)`,
		ownerUserID, hashTokenRaw(rawToken), strings.Join(scopes, ","), time.Now().UTC(),
	)
	return err
}

// TokenOwner returns the owning user of a recorded token.
func (s *Store) TokenOwner(rawToken string) (int64, error) {
	var ownerID int64
	if err := s.DB.Get(&ownerID, `SELECT owner_user_id FROM tokens WHERE token_hash = ? LIMIT 1`, hashTokenRaw(rawToken)); err != nil {
		return 0, notFound(err)
	}
	return ownerID, nil
}

func (s *Store) RevokeToken(rawToken string) error {
	res, err := s.DB.Exec(`UPDATE tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`, time.Now().UTC(), hashTokenRaw(rawToken))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// IsTokenRevoked reports whether a token recorded in the tokens table has
// been revoked. Tokens never recorded (plain session tokens) are not
// revoked.
func (s *Store) IsTokenRevoked(rawToken string) (bool, error) {
	var revokedAt sql.NullTime
	err := s.DB.Get(&revokedAt, `SELECT revoked_at FROM tokens WHERE token_hash = ? LIMIT 1`, hashTokenRaw(rawToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return revokedAt.Valid, nil
}
