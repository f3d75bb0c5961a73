package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"modvault/internal/cache"
	"modvault/internal/manifest"
	"modvault/internal/models"
	"modvault/internal/store"
	"modvault/internal/version"
)

// PublishInput is a version submission: the raw manifest plus storage
// references produced by the file-storage collaborator.
type PublishInput struct {
	UserID int64
	// OwnerIdentity optionally names the identity to publish under; the
	// acting user must be a member. Empty means the user's own identity,
	// created on first publish.
	OwnerIdentity string
	Manifest      []byte
	File          string
	Icon          string
	Readme        string
}

type PublishResult struct {
	Package *models.Package
	Version *models.PackageVersion
}

// resolvedTarget is one manifest target entry after resolution.
type resolvedTarget struct {
	targetID     int64
	minVersionID *int64
	maxVersionID *int64
}

// PublishVersion runs the full version-creation pipeline: authorization,
// manifest validation, target and dependency resolution, the atomic
// write, cache invalidation, and the release announcement handoff.
func (s *Service) PublishVersion(in PublishInput) (*PublishResult, error) {
	user, err := s.store.GetUserByID(in.UserID)
	if err != nil {
		return nil, err
	}

	var owner *models.UploaderIdentity
	if in.OwnerIdentity != "" {
		owner, err = s.store.GetIdentityBySlug(in.OwnerIdentity)
		if err != nil {
			return nil, err
		}
		member, err := s.store.IsMember(user.ID, owner.ID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrForbidden
		}
	} else {
		owner, err = s.GetOrCreateIdentityForUser(user)
		if err != nil {
			return nil, err
		}
	}

	m, err := manifest.Parse(in.Manifest)
	if err != nil {
		return nil, err
	}

	targets, err := s.resolveTargets(m)
	if err != nil {
		return nil, err
	}
	depVersionIDs, err := s.resolveDependencies(m, owner)
	if err != nil {
		return nil, err
	}

	var (
		pkg *models.Package
		ver *models.PackageVersion
	)
	err = s.store.InTx(func(tx *sqlx.Tx) error {
		pkg, err = s.store.GetPackageForOwnerTx(tx, owner.ID, m.Name)
		if errors.Is(err, store.ErrNotFound) {
			pkg = &models.Package{
				OwnerID:   owner.ID,
				Name:      m.Name,
				Slug:      Slugify(m.Name),
				OwnerName: owner.Name,
				OwnerSlug: owner.Slug,
			}
			pkg.ID, err = s.store.CreatePackageTx(tx, pkg)
		}
		if err != nil {
			return err
		}

		existing, err := s.store.VersionsByPackageTx(tx, pkg.ID)
		if err != nil {
			return err
		}
		prevLatest := latestOf(existing)

		ver = &models.PackageVersion{
			PackageID:     pkg.ID,
			VersionNumber: m.Version,
			Description:   m.Description,
			WebsiteURL:    m.URL,
			Readme:        in.Readme,
			Icon:          in.Icon,
			File:          in.File,
		}
		ver.ID, err = s.store.CreateVersionTx(tx, ver)
		if errors.Is(err, store.ErrConflict) {
			return &manifest.ValidationError{
				Field:   "Version",
				Message: fmt.Sprintf("version %s already exists for %s", m.Version, pkg.FullPackageName()),
			}
		}
		if err != nil {
			return err
		}

		for _, t := range targets {
			if err := s.store.InsertCompatibilityTx(tx, &models.PackageCompatibility{
				PackageVersionID: ver.ID,
				TargetID:         t.targetID,
				MinVersionID:     t.minVersionID,
				MaxVersionID:     t.maxVersionID,
			}); err != nil {
				return err
			}
		}
		for _, depID := range depVersionIDs {
			if err := s.store.InsertDependencyTx(tx, ver.ID, depID); err != nil {
				return err
			}
		}

		// exactly one bump per creation: first version, or a new highest
		if prevLatest == nil || version.Less(prevLatest.VersionNumber, ver.VersionNumber) {
			if err := s.store.BumpPackageUpdatedTx(tx, pkg.ID, time.Now().UTC()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.AnyPackageUpdated)

	s.log.WithFields(logrus.Fields{
		"package": pkg.FullPackageName(),
		"version": ver.VersionNumber,
	}).Info("version published")

	s.announceRelease(pkg, ver)

	return &PublishResult{Package: pkg, Version: ver}, nil
}

// resolveTargets maps manifest target entries to compatibility rows.
// Unresolvable targets or bound versions are validation errors, never
// silently dropped.
func (s *Service) resolveTargets(m *manifest.Manifest) ([]resolvedTarget, error) {
	out := make([]resolvedTarget, 0, len(m.Targets))
	for slug, bounds := range m.Targets {
		target, err := s.store.GetTargetBySlug(slug)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &manifest.ValidationError{Field: "Targets", Message: fmt.Sprintf("unknown target %q", slug)}
		}
		if err != nil {
			return nil, err
		}
		rt := resolvedTarget{targetID: target.ID}
		if bounds.MinVersion != "" {
			tv, err := s.store.GetTargetVersion(target.ID, bounds.MinVersion)
			if errors.Is(err, store.ErrNotFound) {
				return nil, &manifest.ValidationError{Field: "Targets", Message: fmt.Sprintf("target %q has no version %s", slug, bounds.MinVersion)}
			}
			if err != nil {
				return nil, err
			}
			rt.minVersionID = &tv.ID
		}
		if bounds.MaxVersion != "" {
			tv, err := s.store.GetTargetVersion(target.ID, bounds.MaxVersion)
			if errors.Is(err, store.ErrNotFound) {
				return nil, &manifest.ValidationError{Field: "Targets", Message: fmt.Sprintf("target %q has no version %s", slug, bounds.MaxVersion)}
			}
			if err != nil {
				return nil, err
			}
			rt.maxVersionID = &tv.ID
		}
		out = append(out, rt)
	}
	return out, nil
}

// resolveDependencies maps each manifest dependency entry to one
// existing package version: the highest active version within the
// declared bounds. A dependency resolving into the uploaded package
// itself would close a cycle and is rejected.
func (s *Service) resolveDependencies(m *manifest.Manifest, owner *models.UploaderIdentity) ([]int64, error) {
	uploadSlug := Slugify(m.Name)
	out := make([]int64, 0, len(m.Dependencies))
	for slug, bounds := range m.Dependencies {
		packages, err := s.store.ListPackagesBySlug(slug)
		if err != nil {
			return nil, err
		}
		var best *models.PackageVersion
		for i := range packages {
			p := &packages[i]
			if p.OwnerID == owner.ID && p.Slug == uploadSlug {
				return nil, &manifest.ValidationError{Field: "Dependencies", Message: fmt.Sprintf("package cannot depend on itself (%q)", slug)}
			}
			vs, err := s.store.VersionsByPackage(p.ID)
			if err != nil {
				return nil, err
			}
			for _, v := range activeVersionsDescending(vs) {
				ok, err := version.InRange(v.VersionNumber, bounds.MinVersion, bounds.MaxVersion)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if best == nil || version.Less(best.VersionNumber, v.VersionNumber) {
					candidate := v
					best = &candidate
				}
				break
			}
		}
		if best == nil {
			return nil, &manifest.ValidationError{Field: "Dependencies", Message: fmt.Sprintf("no version of %q satisfies the declared bounds", slug)}
		}
		out = append(out, best.ID)
	}
	return out, nil
}
