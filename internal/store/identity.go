package store

import (
	"time"

	"github.com/jmoiron/sqlx"

	"modvault/internal/models"
)

func (s *Store) GetIdentityByID(id int64) (*models.UploaderIdentity, error) {
	var ident models.UploaderIdentity
	if err := s.DB.Get(&ident, `SELECT id, name, slug, created_at FROM uploader_identities WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &ident, nil
}

func (s *Store) GetIdentityBySlug(slug string) (*models.UploaderIdentity, error) {
	var ident models.UploaderIdentity
	if err := s.DB.Get(&ident, `SELECT id, name, slug, created_at FROM uploader_identities WHERE slug = ?`, slug); err != nil {
		return nil, notFound(err)
	}
	return &ident, nil
}

func (s *Store) GetIdentityByName(name string) (*models.UploaderIdentity, error) {
	var ident models.UploaderIdentity
	if err := s.DB.Get(&ident, `SELECT id, name, slug, created_at FROM uploader_identities WHERE name = ?`, name); err != nil {
		return nil, notFound(err)
	}
	return &ident, nil
}

// FirstMembershipForUser returns the user's oldest identity membership,
// or ErrNotFound if the user belongs to no identity.
func (s *Store) FirstMembershipForUser(userID int64) (*models.UploaderIdentityMember, error) {
	var m models.UploaderIdentityMember
	err := s.DB.Get(&m, `SELECT id, user_id, identity_id, role, created_at FROM uploader_identity_members WHERE user_id = ? ORDER BY id ASC LIMIT 1`, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// IsMember reports whether userID is a member of identityID.
func (s *Store) IsMember(userID, identityID int64) (bool, error) {
	var n int
	err := s.DB.Get(&n, `SELECT COUNT(*) FROM uploader_identity_members WHERE user_id = ? AND identity_id = ?`, userID, identityID)
	return n > 0, err
}

func (s *Store) ListMembers(identityID int64) ([]models.UploaderIdentityMember, error) {
	var ms []models.UploaderIdentityMember
	err := s.DB.Select(&ms, `SELECT id, user_id, identity_id, role, created_at FROM uploader_identity_members WHERE identity_id = ? ORDER BY id ASC`, identityID)
	return ms, err
}

// CreateIdentityWithOwnerTx inserts an identity and its first owner-role
// member in one transaction step. The caller owns the transaction.
func (s *Store) CreateIdentityWithOwnerTx(tx *sqlx.Tx, name, slug string, ownerUserID int64) (*models.UploaderIdentity, error) {
	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO uploader_identities (name, slug, created_at) VALUES (?, ?, ?)`, name, slug, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(`INSERT INTO uploader_identity_members (user_id, identity_id, role, created_at) VALUES (?, ?, ?, ?)`,
		ownerUserID, id, models.IdentityRoleOwner, now)
	if err != nil {
		return nil, err
	}
	return &models.UploaderIdentity{ID: id, Name: name, Slug: slug, CreatedAt: now}, nil
}

func (s *Store) AddMember(identityID, userID int64, role models.IdentityRole) error {
	_, err := s.DB.Exec(`INSERT INTO uploader_identity_members (user_id, identity_id, role, created_at) VALUES (?, ?, ?, ?)`,
		userID, identityID, role, time.Now().UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *Store) RemoveMember(identityID, userID int64) error {
	res, err := s.DB.Exec(`DELETE FROM uploader_identity_members WHERE identity_id = ? AND user_id = ?`, identityID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// CountOwners returns how many owner-role members an identity has.
func (s *Store) CountOwners(identityID int64) (int, error) {
	var n int
	err := s.DB.Get(&n, `SELECT COUNT(*) FROM uploader_identity_members WHERE identity_id = ? AND role = ?`, identityID, models.IdentityRoleOwner)
	return n, err
}

// MemberRole returns the role of userID within identityID.
func (s *Store) MemberRole(identityID, userID int64) (models.IdentityRole, error) {
	var role models.IdentityRole
	err := s.DB.Get(&role, `SELECT role FROM uploader_identity_members WHERE identity_id = ? AND user_id = ?`, identityID, userID)
	if err != nil {
		return "", notFound(err)
	}
	return role, nil
}
