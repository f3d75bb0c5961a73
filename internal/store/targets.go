package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"modvault/internal/models"
)

const targetColumns = `id, name, slug, description, website_url, icon, is_active, is_deprecated, is_pinned, date_created, date_updated, uuid4`

func (s *Store) ListTargets() ([]models.Target, error) {
	var ts []models.Target
	err := s.DB.Select(&ts, `SELECT `+targetColumns+` FROM targets ORDER BY id ASC`)
	return ts, err
}

func (s *Store) GetTargetBySlug(slug string) (*models.Target, error) {
	var t models.Target
	if err := s.DB.Get(&t, `SELECT `+targetColumns+` FROM targets WHERE slug = ?`, slug); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) GetTargetByID(id int64) (*models.Target, error) {
	var t models.Target
	if err := s.DB.Get(&t, `SELECT `+targetColumns+` FROM targets WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) CreateTarget(t *models.Target) (int64, error) {
	now := time.Now().UTC()
	if t.UUID4 == uuid.Nil {
		t.UUID4 = uuid.New()
	}
	res, err := s.DB.Exec(`
		INSERT INTO targets (name, slug, description, website_url, icon, is_active, is_deprecated, is_pinned, date_created, date_updated, uuid4)
		VALUES (?, ?, ?, ?, ?, 1, 0, 0, ?, ?, ?)`,
		t.Name, t.Slug, t.Description, t.WebsiteURL, t.Icon, now, now, t.UUID4)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	t.DateCreated = now
	t.DateUpdated = now
	t.IsActive = true
	return res.LastInsertId()
}

func (s *Store) SetTargetActive(targetID int64, active bool) error {
	_, err := s.DB.Exec(`UPDATE targets SET is_active = ? WHERE id = ?`, active, targetID)
	return err
}

const targetVersionColumns = `id, target_id, version_number, is_active, date_created, uuid4`

func (s *Store) TargetVersions(targetID int64) ([]models.TargetVersion, error) {
	var vs []models.TargetVersion
	err := s.DB.Select(&vs, `SELECT `+targetVersionColumns+` FROM target_versions WHERE target_id = ? ORDER BY id ASC`, targetID)
	return vs, err
}

func (s *Store) TargetVersionsTx(tx *sqlx.Tx, targetID int64) ([]models.TargetVersion, error) {
	var vs []models.TargetVersion
	err := tx.Select(&vs, `SELECT `+targetVersionColumns+` FROM target_versions WHERE target_id = ? ORDER BY id ASC`, targetID)
	return vs, err
}

func (s *Store) GetTargetVersion(targetID int64, versionNumber string) (*models.TargetVersion, error) {
	var v models.TargetVersion
	err := s.DB.Get(&v, `SELECT `+targetVersionColumns+` FROM target_versions WHERE target_id = ? AND version_number = ?`, targetID, versionNumber)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) GetTargetVersionByID(id int64) (*models.TargetVersion, error) {
	var v models.TargetVersion
	err := s.DB.Get(&v, `SELECT `+targetVersionColumns+` FROM target_versions WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) CreateTargetVersionTx(tx *sqlx.Tx, v *models.TargetVersion) (int64, error) {
	now := time.Now().UTC()
	if v.UUID4 == uuid.Nil {
		v.UUID4 = uuid.New()
	}
	res, err := tx.Exec(`
		INSERT INTO target_versions (target_id, version_number, is_active, date_created, uuid4)
		VALUES (?, ?, 1, ?, ?)`,
		v.TargetID, v.VersionNumber, now, v.UUID4)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	v.DateCreated = now
	v.IsActive = true
	return res.LastInsertId()
}

func (s *Store) SetTargetVersionActive(versionID int64, active bool) error {
	_, err := s.DB.Exec(`UPDATE target_versions SET is_active = ? WHERE id = ?`, active, versionID)
	return err
}

func (s *Store) BumpTargetUpdatedTx(tx *sqlx.Tx, targetID int64, t time.Time) error {
	_, err := tx.Exec(`UPDATE targets SET date_updated = ? WHERE id = ?`, t, targetID)
	return err
}
