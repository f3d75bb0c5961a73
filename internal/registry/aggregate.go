package registry

import (
	"sort"

	"modvault/internal/models"
	"modvault/internal/version"
)

// sortVersionsDescending orders versions highest-first under the strict
// numeric version order.
func sortVersionsDescending(vs []models.PackageVersion) {
	sort.SliceStable(vs, func(i, j int) bool {
		return version.Less(vs[j].VersionNumber, vs[i].VersionNumber)
	})
}

// activeVersionsDescending filters to active versions, highest first.
// This is the derived form of "latest": recomputed from the version set
// on every call, never stored.
func activeVersionsDescending(vs []models.PackageVersion) []models.PackageVersion {
	out := make([]models.PackageVersion, 0, len(vs))
	for _, v := range vs {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sortVersionsDescending(out)
	return out
}

// latestOf returns the highest active version, or nil when none exist.
func latestOf(vs []models.PackageVersion) *models.PackageVersion {
	active := activeVersionsDescending(vs)
	if len(active) == 0 {
		return nil
	}
	return &active[0]
}

// totalDownloadsOf sums downloads over all versions, active or not.
func totalDownloadsOf(vs []models.PackageVersion) int64 {
	var total int64
	for _, v := range vs {
		total += v.Downloads
	}
	return total
}

// isEffectivelyVisible reports whether the package shows up in public
// listings: its own flag is set and at least one version is active.
func isEffectivelyVisible(p *models.Package, vs []models.PackageVersion) bool {
	if !p.IsActive {
		return false
	}
	for _, v := range vs {
		if v.IsActive {
			return true
		}
	}
	return false
}

// AvailableVersions returns the package's active versions ordered
// descending by version number.
func (s *Service) AvailableVersions(packageID int64) ([]models.PackageVersion, error) {
	vs, err := s.store.VersionsByPackage(packageID)
	if err != nil {
		return nil, err
	}
	return activeVersionsDescending(vs), nil
}

// Latest returns the package's highest active version, or nil.
func (s *Service) Latest(packageID int64) (*models.PackageVersion, error) {
	vs, err := s.store.VersionsByPackage(packageID)
	if err != nil {
		return nil, err
	}
	return latestOf(vs), nil
}

// TotalDownloads sums the download counters over every version of the
// package, active or not.
func (s *Service) TotalDownloads(packageID int64) (int64, error) {
	vs, err := s.store.VersionsByPackage(packageID)
	if err != nil {
		return 0, err
	}
	return totalDownloadsOf(vs), nil
}

// IsEffectivelyVisible reports whether the package appears in public
// listings.
func (s *Service) IsEffectivelyVisible(packageID int64) (bool, error) {
	p, err := s.store.GetPackageByID(packageID)
	if err != nil {
		return false, err
	}
	vs, err := s.store.VersionsByPackage(packageID)
	if err != nil {
		return false, err
	}
	return isEffectivelyVisible(p, vs), nil
}
