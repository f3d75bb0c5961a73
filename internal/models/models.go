package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePublic     Role = "public"
	RoleMaintainer Role = "maintainer"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password_hash" json:"-"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IdentityRole is the role of a user within an uploader identity.
type IdentityRole string

const (
	IdentityRoleOwner  IdentityRole = "owner"
	IdentityRoleMember IdentityRole = "member"
)

// UploaderIdentity is the publishing identity (individual or group) that
// owns packages. Users act through identities they are members of.
type UploaderIdentity struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UploaderIdentityMember struct {
	ID         int64        `db:"id" json:"id"`
	UserID     int64        `db:"user_id" json:"user_id"`
	IdentityID int64        `db:"identity_id" json:"identity_id"`
	Role       IdentityRole `db:"role" json:"role"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// Package is a named mod owned by one identity. Its "latest" version and
// visibility are derived from its version set, never stored.
type Package struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsDeprecated bool      `db:"is_deprecated" json:"is_deprecated"`
	IsPinned     bool      `db:"is_pinned" json:"is_pinned"`
	DateCreated  time.Time `db:"date_created" json:"date_created"`
	DateUpdated  time.Time `db:"date_updated" json:"date_updated"`
	UUID4        uuid.UUID `db:"uuid4" json:"uuid4"`

	// joined from uploader_identities
	OwnerName string `db:"owner_name" json:"owner_name"`
	OwnerSlug string `db:"owner_slug" json:"owner_slug"`
}

// FullPackageName is the owner-qualified name, e.g. "SomeTeam-SomeMod".
func (p *Package) FullPackageName() string {
	return p.OwnerName + "-" + p.Name
}

func (p *Package) DisplayName() string {
	return strings.ReplaceAll(p.Name, "_", " ")
}

// PackageVersion is a single published release. Immutable once published
// except for is_active and the downloads counter.
type PackageVersion struct {
	ID            int64     `db:"id" json:"id"`
	PackageID     int64     `db:"package_id" json:"package_id"`
	VersionNumber string    `db:"version_number" json:"version_number"`
	Description   string    `db:"description" json:"description"`
	WebsiteURL    string    `db:"website_url" json:"website_url"`
	Readme        string    `db:"readme" json:"readme"`
	Icon          string    `db:"icon" json:"icon"`
	File          string    `db:"file" json:"file"`
	Downloads     int64     `db:"downloads" json:"downloads"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	DateCreated   time.Time `db:"date_created" json:"date_created"`
	UUID4         uuid.UUID `db:"uuid4" json:"uuid4"`
}

// FullVersionName is the owner-qualified versioned name,
// e.g. "SomeTeam-SomeMod-1.0.0".
func (v *PackageVersion) FullVersionName(p *Package) string {
	return p.FullPackageName() + "-" + v.VersionNumber
}

// PackageDependency is a directed edge between two package versions.
type PackageDependency struct {
	ID                 int64 `db:"id" json:"id"`
	VersionID          int64 `db:"version_id" json:"version_id"`
	DependsOnVersionID int64 `db:"depends_on_version_id" json:"depends_on_version_id"`
}

// PackageCompatibility links a package version to a target with optional
// version bounds. Nil min means no lower bound, nil max no upper bound.
type PackageCompatibility struct {
	ID               int64  `db:"id" json:"id"`
	PackageVersionID int64  `db:"package_version_id" json:"package_version_id"`
	TargetID         int64  `db:"target_id" json:"target_id"`
	MinVersionID     *int64 `db:"min_version_id" json:"min_version_id"`
	MaxVersionID     *int64 `db:"max_version_id" json:"max_version_id"`
}

// Target is a game or application that packages can be built for.
type Target struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	WebsiteURL   string    `db:"website_url" json:"website_url"`
	Icon         string    `db:"icon" json:"icon"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsDeprecated bool      `db:"is_deprecated" json:"is_deprecated"`
	IsPinned     bool      `db:"is_pinned" json:"is_pinned"`
	DateCreated  time.Time `db:"date_created" json:"date_created"`
	DateUpdated  time.Time `db:"date_updated" json:"date_updated"`
	UUID4        uuid.UUID `db:"uuid4" json:"uuid4"`
}

func (t *Target) DisplayName() string {
	return strings.ReplaceAll(t.Name, "_", " ")
}

type TargetVersion struct {
	ID            int64     `db:"id" json:"id"`
	TargetID      int64     `db:"target_id" json:"target_id"`
	VersionNumber string    `db:"version_number" json:"version_number"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	DateCreated   time.Time `db:"date_created" json:"date_created"`
	UUID4         uuid.UUID `db:"uuid4" json:"uuid4"`
}

func (v *TargetVersion) FullVersionName(t *Target) string {
	return t.Name + "-" + v.VersionNumber
}

// DownloadEvent deduplicates download counting per (version, source IP).
type DownloadEvent struct {
	ID             int64     `db:"id" json:"id"`
	VersionID      int64     `db:"version_id" json:"version_id"`
	SourceIP       string    `db:"source_ip" json:"source_ip"`
	TotalDownloads int64     `db:"total_downloads" json:"total_downloads"`
	LastDownload   time.Time `db:"last_download" json:"last_download"`
}

// WebhookType classifies webhook subscribers.
type WebhookType string

const (
	WebhookTypeRelease WebhookType = "release"
)

type Webhook struct {
	ID        int64       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	URL       string      `db:"url" json:"url"`
	Type      WebhookType `db:"webhook_type" json:"webhook_type"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
