package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"modvault/internal/models"
)

const packageColumns = `
	p.id, p.owner_id, p.name, p.slug, p.is_active, p.is_deprecated, p.is_pinned,
	p.date_created, p.date_updated, p.uuid4,
	i.name AS owner_name, i.slug AS owner_slug`

const packageFrom = ` FROM packages p JOIN uploader_identities i ON i.id = p.owner_id`

func (s *Store) ListPackages() ([]models.Package, error) {
	var ps []models.Package
	err := s.DB.Select(&ps, `SELECT`+packageColumns+packageFrom+` ORDER BY p.id ASC`)
	return ps, err
}

func (s *Store) ListPackagesByOwner(identityID int64) ([]models.Package, error) {
	var ps []models.Package
	err := s.DB.Select(&ps, `SELECT`+packageColumns+packageFrom+` WHERE p.owner_id = ? ORDER BY p.id ASC`, identityID)
	return ps, err
}

// ListDependantPackages returns every other package with at least one
// version depending on any version of packageID.
func (s *Store) ListDependantPackages(packageID int64) ([]models.Package, error) {
	var ps []models.Package
	err := s.DB.Select(&ps, `
		SELECT DISTINCT`+packageColumns+packageFrom+`
		JOIN package_versions v ON v.package_id = p.id
		JOIN package_dependencies d ON d.version_id = v.id
		JOIN package_versions dv ON dv.id = d.depends_on_version_id
		WHERE dv.package_id = ? AND p.id != ?
		ORDER BY p.id ASC`, packageID, packageID)
	return ps, err
}

// ListPackagesBySlug returns active packages with the given slug across
// all owners, used for dependency resolution.
func (s *Store) ListPackagesBySlug(slug string) ([]models.Package, error) {
	var ps []models.Package
	err := s.DB.Select(&ps, `SELECT`+packageColumns+packageFrom+` WHERE p.slug = ? AND p.is_active = 1 ORDER BY p.id ASC`, slug)
	return ps, err
}

func (s *Store) GetPackage(ownerSlug, packageSlug string) (*models.Package, error) {
	var p models.Package
	err := s.DB.Get(&p, `SELECT`+packageColumns+packageFrom+` WHERE i.slug = ? AND p.slug = ?`, ownerSlug, packageSlug)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetPackageByOwnerName resolves by the display names used in download
// URLs rather than slugs.
func (s *Store) GetPackageByOwnerName(ownerName, packageName string) (*models.Package, error) {
	var p models.Package
	err := s.DB.Get(&p, `SELECT`+packageColumns+packageFrom+` WHERE i.name = ? AND p.name = ?`, ownerName, packageName)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) GetPackageByID(id int64) (*models.Package, error) {
	var p models.Package
	err := s.DB.Get(&p, `SELECT`+packageColumns+packageFrom+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) GetPackageForOwnerTx(tx *sqlx.Tx, ownerID int64, name string) (*models.Package, error) {
	var p models.Package
	err := tx.Get(&p, `SELECT`+packageColumns+packageFrom+` WHERE p.owner_id = ? AND p.name = ?`, ownerID, name)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) CreatePackageTx(tx *sqlx.Tx, p *models.Package) (int64, error) {
	now := time.Now().UTC()
	if p.UUID4 == uuid.Nil {
		p.UUID4 = uuid.New()
	}
	res, err := tx.Exec(`
		INSERT INTO packages (owner_id, name, slug, is_active, is_deprecated, is_pinned, date_created, date_updated, uuid4)
		VALUES (?, ?, ?, 1, 0, 0, ?, ?, ?)`,
		p.OwnerID, p.Name, p.Slug, now, now, p.UUID4)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	p.DateCreated = now
	p.DateUpdated = now
	p.IsActive = true
	return res.LastInsertId()
}

// BumpPackageUpdatedTx refreshes the package's date_updated stamp.
func (s *Store) BumpPackageUpdatedTx(tx *sqlx.Tx, packageID int64, t time.Time) error {
	_, err := tx.Exec(`UPDATE packages SET date_updated = ? WHERE id = ?`, t, packageID)
	return err
}

func (s *Store) SetPackageActive(packageID int64, active bool) error {
	_, err := s.DB.Exec(`UPDATE packages SET is_active = ? WHERE id = ?`, active, packageID)
	return err
}

func (s *Store) SetPackageDeprecated(packageID int64, deprecated bool) error {
	_, err := s.DB.Exec(`UPDATE packages SET is_deprecated = ? WHERE id = ?`, deprecated, packageID)
	return err
}

func (s *Store) SetPackagePinned(packageID int64, pinned bool) error {
	_, err := s.DB.Exec(`UPDATE packages SET is_pinned = ? WHERE id = ?`, pinned, packageID)
	return err
}

const versionColumns = `id, package_id, version_number, description, website_url, readme, icon, file, downloads, is_active, date_created, uuid4`

func (s *Store) VersionsByPackage(packageID int64) ([]models.PackageVersion, error) {
	var vs []models.PackageVersion
	err := s.DB.Select(&vs, `SELECT `+versionColumns+` FROM package_versions WHERE package_id = ? ORDER BY id ASC`, packageID)
	return vs, err
}

// VersionsByPackageIDs loads versions for a set of packages in one
// query, keyed by package id.
func (s *Store) VersionsByPackageIDs(ids []int64) (map[int64][]models.PackageVersion, error) {
	byPackage := make(map[int64][]models.PackageVersion, len(ids))
	if len(ids) == 0 {
		return byPackage, nil
	}
	query, args, err := sqlx.In(`SELECT `+versionColumns+` FROM package_versions WHERE package_id IN (?) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	var vs []models.PackageVersion
	if err := s.DB.Select(&vs, s.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, v := range vs {
		byPackage[v.PackageID] = append(byPackage[v.PackageID], v)
	}
	return byPackage, nil
}

// VersionsByPackageTx reads a package's versions inside the caller's
// transaction, so latest-version decisions see a consistent snapshot.
func (s *Store) VersionsByPackageTx(tx *sqlx.Tx, packageID int64) ([]models.PackageVersion, error) {
	var vs []models.PackageVersion
	err := tx.Select(&vs, `SELECT `+versionColumns+` FROM package_versions WHERE package_id = ? ORDER BY id ASC`, packageID)
	return vs, err
}

func (s *Store) GetVersion(packageID int64, versionNumber string) (*models.PackageVersion, error) {
	var v models.PackageVersion
	err := s.DB.Get(&v, `SELECT `+versionColumns+` FROM package_versions WHERE package_id = ? AND version_number = ?`, packageID, versionNumber)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) GetVersionByID(id int64) (*models.PackageVersion, error) {
	var v models.PackageVersion
	err := s.DB.Get(&v, `SELECT `+versionColumns+` FROM package_versions WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Store) CreateVersionTx(tx *sqlx.Tx, v *models.PackageVersion) (int64, error) {
	now := time.Now().UTC()
	if v.UUID4 == uuid.Nil {
		v.UUID4 = uuid.New()
	}
	res, err := tx.Exec(`
		INSERT INTO package_versions (package_id, version_number, description, website_url, readme, icon, file, downloads, is_active, date_created, uuid4)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
		v.PackageID, v.VersionNumber, v.Description, v.WebsiteURL, v.Readme, v.Icon, v.File, now, v.UUID4)
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

func (s *Store) SetVersionActive(versionID int64, active bool) error {
	_, err := s.DB.Exec(`UPDATE package_versions SET is_active = ? WHERE id = ?`, active, versionID)
	return err
}

func (s *Store) InsertDependencyTx(tx *sqlx.Tx, versionID, dependsOnVersionID int64) error {
	_, err := tx.Exec(`INSERT INTO package_dependencies (version_id, depends_on_version_id) VALUES (?, ?)`, versionID, dependsOnVersionID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *Store) InsertCompatibilityTx(tx *sqlx.Tx, c *models.PackageCompatibility) error {
	_, err := tx.Exec(`
		INSERT INTO package_compatibilities (package_version_id, target_id, min_version_id, max_version_id)
		VALUES (?, ?, ?, ?)`,
		c.PackageVersionID, c.TargetID, c.MinVersionID, c.MaxVersionID)
	return err
}

func (s *Store) CompatibilitiesByVersion(versionID int64) ([]models.PackageCompatibility, error) {
	var cs []models.PackageCompatibility
	err := s.DB.Select(&cs, `SELECT id, package_version_id, target_id, min_version_id, max_version_id FROM package_compatibilities WHERE package_version_id = ?`, versionID)
	return cs, err
}

// DependencyInfo is a dependency version joined with the fields needed
// to order and display it.
type DependencyInfo struct {
	models.PackageVersion
	PackageName    string `db:"package_name"`
	PackageSlug    string `db:"package_slug"`
	OwnerName      string `db:"owner_name"`
	PackagePinned  bool   `db:"package_pinned"`
	TotalDownloads int64  `db:"total_downloads"`
}

// DependenciesOfVersion returns the versions a version depends on.
func (s *Store) DependenciesOfVersion(versionID int64) ([]DependencyInfo, error) {
	var deps []DependencyInfo
	err := s.DB.Select(&deps, `
		SELECT v.id, v.package_id, v.version_number, v.description, v.website_url, v.readme,
		       v.icon, v.file, v.downloads, v.is_active, v.date_created, v.uuid4,
		       p.name AS package_name, p.slug AS package_slug, p.is_pinned AS package_pinned,
		       i.name AS owner_name,
		       (SELECT COALESCE(SUM(downloads), 0) FROM package_versions WHERE package_id = p.id) AS total_downloads
		FROM package_dependencies d
		JOIN package_versions v ON v.id = d.depends_on_version_id
		JOIN packages p ON p.id = v.package_id
		JOIN uploader_identities i ON i.id = p.owner_id
		WHERE d.version_id = ?
		ORDER BY v.id ASC`, versionID)
	return deps, err
}

func (s *Store) IncrementVersionDownloadsTx(tx *sqlx.Tx, versionID int64) error {
	_, err := tx.Exec(`UPDATE package_versions SET downloads = downloads + 1 WHERE id = ?`, versionID)
	return err
}
