package registry

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"modvault/internal/cache"
	"modvault/internal/manifest"
	"modvault/internal/models"
	"modvault/internal/store"
	"modvault/internal/version"
)

// TargetSummary is a listed target with its derived version state.
type TargetSummary struct {
	Name          string                 `json:"name"`
	Slug          string                 `json:"slug"`
	Description   string                 `json:"description"`
	WebsiteURL    string                 `json:"website_url"`
	Icon          string                 `json:"icon"`
	IsPinned      bool                   `json:"is_pinned"`
	IsDeprecated  bool                   `json:"is_deprecated"`
	VersionNumber string                 `json:"version_number"`
	DateCreated   time.Time              `json:"date_created"`
	DateUpdated   time.Time              `json:"date_updated"`
	UUID4         uuid.UUID              `json:"uuid4"`
	Versions      []TargetVersionSummary `json:"versions"`
}

type TargetVersionSummary struct {
	FullName      string    `json:"full_name"`
	VersionNumber string    `json:"version_number"`
	IsActive      bool      `json:"is_active"`
	DateCreated   time.Time `json:"date_created"`
	UUID4         uuid.UUID `json:"uuid4"`
}

func activeTargetVersionsDescending(vs []models.TargetVersion) []models.TargetVersion {
	out := make([]models.TargetVersion, 0, len(vs))
	for _, v := range vs {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return version.Less(out[j].VersionNumber, out[i].VersionNumber)
	})
	return out
}

func isTargetEffectivelyVisible(t *models.Target, vs []models.TargetVersion) bool {
	if !t.IsActive {
		return false
	}
	for _, v := range vs {
		if v.IsActive {
			return true
		}
	}
	return false
}

// ListTargets returns visible targets, pinned first, deprecated last,
// then most recently updated. Results are cached until any target write.
func (s *Service) ListTargets() ([]TargetSummary, error) {
	const key = "targets..last-updated"
	if cached, ok := s.cache.Get(key); ok {
		if ts, ok := cached.([]TargetSummary); ok {
			return ts, nil
		}
	}

	targets, err := s.store.ListTargets()
	if err != nil {
		return nil, err
	}
	summaries := make([]TargetSummary, 0, len(targets))
	for i := range targets {
		t := &targets[i]
		vs, err := s.store.TargetVersions(t.ID)
		if err != nil {
			return nil, err
		}
		if !isTargetEffectivelyVisible(t, vs) {
			continue
		}
		active := activeTargetVersionsDescending(vs)
		summary := TargetSummary{
			Name:          t.Name,
			Slug:          t.Slug,
			Description:   t.Description,
			WebsiteURL:    t.WebsiteURL,
			Icon:          t.Icon,
			IsPinned:      t.IsPinned,
			IsDeprecated:  t.IsDeprecated,
			VersionNumber: active[0].VersionNumber,
			DateCreated:   t.DateCreated,
			DateUpdated:   t.DateUpdated,
			UUID4:         t.UUID4,
		}
		for _, v := range active {
			summary.Versions = append(summary.Versions, TargetVersionSummary{
				FullName:      v.FullVersionName(t),
				VersionNumber: v.VersionNumber,
				IsActive:      v.IsActive,
				DateCreated:   v.DateCreated,
				UUID4:         v.UUID4,
			})
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := &summaries[i], &summaries[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.IsDeprecated != b.IsDeprecated {
			return b.IsDeprecated
		}
		return a.DateUpdated.After(b.DateUpdated)
	})

	s.cache.Set(key, summaries, cache.AnyTargetUpdated)
	return summaries, nil
}

// GetTarget resolves one visible target by slug.
func (s *Service) GetTarget(slug string) (*models.Target, []models.TargetVersion, error) {
	t, err := s.store.GetTargetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	vs, err := s.store.TargetVersions(t.ID)
	if err != nil {
		return nil, nil, err
	}
	if !isTargetEffectivelyVisible(t, vs) {
		return nil, nil, ErrHidden
	}
	return t, activeTargetVersionsDescending(vs), nil
}

// LatestTargetVersion returns the target's highest active version, or
// nil when none exist.
func (s *Service) LatestTargetVersion(targetID int64) (*models.TargetVersion, error) {
	vs, err := s.store.TargetVersions(targetID)
	if err != nil {
		return nil, err
	}
	active := activeTargetVersionsDescending(vs)
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

// CreateTarget registers a new target. Operator surface: requires admin.
func (s *Service) CreateTarget(actingUserID int64, t *models.Target) error {
	if err := s.requireAdmin(actingUserID); err != nil {
		return err
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	var err error
	if t.ID, err = s.store.CreateTarget(t); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyTargetUpdated)
	s.log.WithFields(logrus.Fields{"target": t.Slug}).Info("target created")
	return nil
}

// CreateTargetVersion adds a version to a target under the same strict
// numeric version rules as package versions.
func (s *Service) CreateTargetVersion(actingUserID, targetID int64, versionNumber string) (*models.TargetVersion, error) {
	if err := s.requireAdmin(actingUserID); err != nil {
		return nil, err
	}
	if !version.IsValid(versionNumber) {
		return nil, &manifest.ValidationError{Field: "Version", Message: "must match MAJOR.MINOR.PATCH"}
	}
	v := &models.TargetVersion{TargetID: targetID, VersionNumber: versionNumber}
	err := s.store.InTx(func(tx *sqlx.Tx) error {
		existing, err := s.store.TargetVersionsTx(tx, targetID)
		if err != nil {
			return err
		}
		active := activeTargetVersionsDescending(existing)

		v.ID, err = s.store.CreateTargetVersionTx(tx, v)
		if errors.Is(err, store.ErrConflict) {
			return &manifest.ValidationError{Field: "Version", Message: fmt.Sprintf("version %s already exists", versionNumber)}
		}
		if err != nil {
			return err
		}
		if len(active) == 0 || version.Less(active[0].VersionNumber, versionNumber) {
			return s.store.BumpTargetUpdatedTx(tx, targetID, time.Now().UTC())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(cache.AnyTargetUpdated)
	return v, nil
}

// DeactivateTargetVersion soft-deletes a target version; latest falls
// back to the next-highest active version by derivation.
func (s *Service) DeactivateTargetVersion(actingUserID, versionID int64) error {
	if err := s.requireAdmin(actingUserID); err != nil {
		return err
	}
	if err := s.store.SetTargetVersionActive(versionID, false); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyTargetUpdated)
	return nil
}

func (s *Service) requireAdmin(userID int64) error {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
