package registry

import (
	"fmt"
	"sort"

	"modvault/internal/cache"
	"modvault/internal/models"
)

// DependencySummary is one entry of a package's dependency list.
type DependencySummary struct {
	OwnerName       string `json:"owner"`
	PackageName     string `json:"name"`
	PackageSlug     string `json:"slug"`
	VersionNumber   string `json:"version_number"`
	IsPinned        bool   `json:"is_pinned"`
	TotalDownloads  int64  `json:"total_downloads"`
	FullVersionName string `json:"full_version_name"`
}

// PackageDetail is everything the detail page needs.
type PackageDetail struct {
	Summary          PackageSummary      `json:"package"`
	WebsiteURL       string              `json:"website_url"`
	Readme           string              `json:"readme"`
	InstallURL       string              `json:"install_url"`
	DownloadURL      string              `json:"download_url"`
	DependantCount   int                 `json:"dependant_count"`
	DependantsString string              `json:"dependants_string"`
	Dependencies     []DependencySummary `json:"dependencies"`
	Versions         []VersionSummary    `json:"versions"`
}

// VersionSummary is one row of the version history list.
type VersionSummary struct {
	VersionNumber string `json:"version_number"`
	Description   string `json:"description"`
	Downloads     int64  `json:"downloads"`
	DownloadURL   string `json:"download_url"`
	InstallURL    string `json:"install_url"`
	DateCreated   string `json:"date_created"`
	UUID4         string `json:"uuid4"`
}

// GetPackageDetail resolves a visible package by owner and package slug
// and assembles its derived state. The result is cached until any
// package write; only successful lookups are cached, so visibility is
// re-derived whenever the package is hidden.
func (s *Service) GetPackageDetail(ownerSlug, packageSlug string) (*PackageDetail, error) {
	key := "detail." + ownerSlug + "." + packageSlug
	if cached, ok := s.cache.Get(key); ok {
		if detail, ok := cached.(*PackageDetail); ok {
			return detail, nil
		}
	}
	detail, err := s.computePackageDetail(ownerSlug, packageSlug)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, detail, cache.AnyPackageUpdated)
	return detail, nil
}

func (s *Service) computePackageDetail(ownerSlug, packageSlug string) (*PackageDetail, error) {
	p, err := s.store.GetPackage(ownerSlug, packageSlug)
	if err != nil {
		return nil, err
	}
	vs, err := s.store.VersionsByPackage(p.ID)
	if err != nil {
		return nil, err
	}
	if !isEffectivelyVisible(p, vs) {
		return nil, ErrHidden
	}
	latest := latestOf(vs)

	detail := &PackageDetail{
		Summary: PackageSummary{
			PackageID:       p.ID,
			Name:            p.Name,
			DisplayName:     p.DisplayName(),
			Slug:            p.Slug,
			OwnerName:       p.OwnerName,
			OwnerSlug:       p.OwnerSlug,
			FullPackageName: p.FullPackageName(),
			IsPinned:        p.IsPinned,
			IsDeprecated:    p.IsDeprecated,
			TotalDownloads:  totalDownloadsOf(vs),
			DateCreated:     p.DateCreated,
			DateUpdated:     p.DateUpdated,
			UUID4:           p.UUID4,
		},
	}
	if latest != nil {
		detail.Summary.VersionNumber = latest.VersionNumber
		detail.Summary.Description = latest.Description
		detail.Summary.Icon = latest.Icon
		detail.WebsiteURL = latest.WebsiteURL
		detail.Readme = latest.Readme
		detail.InstallURL = s.InstallURL(p, latest)
		detail.DownloadURL = s.DownloadURL(p, latest)

		deps, err := s.SortedDependencies(latest.ID)
		if err != nil {
			return nil, err
		}
		detail.Dependencies = deps
	}

	for _, v := range activeVersionsDescending(vs) {
		detail.Versions = append(detail.Versions, VersionSummary{
			VersionNumber: v.VersionNumber,
			Description:   v.Description,
			Downloads:     v.Downloads,
			DownloadURL:   s.DownloadURL(p, &v),
			InstallURL:    s.InstallURL(p, &v),
			DateCreated:   v.DateCreated.UTC().Format("2006-01-02T15:04:05Z"),
			UUID4:         v.UUID4.String(),
		})
	}

	dependants, err := s.Dependants(p.ID)
	if err != nil {
		return nil, err
	}
	detail.DependantCount = len(dependants)
	if detail.DependantCount == 1 {
		detail.DependantsString = "1 other mod depends on this mod"
	} else {
		detail.DependantsString = fmt.Sprintf("%d other mods depend on this mod", detail.DependantCount)
	}
	return detail, nil
}

// SortedDependencies returns a version's dependencies ordered pinned
// packages first, then by owning-package downloads descending.
func (s *Service) SortedDependencies(versionID int64) ([]DependencySummary, error) {
	deps, err := s.store.DependenciesOfVersion(versionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].PackagePinned != deps[j].PackagePinned {
			return deps[i].PackagePinned
		}
		return deps[i].TotalDownloads > deps[j].TotalDownloads
	})
	out := make([]DependencySummary, 0, len(deps))
	for _, d := range deps {
		out = append(out, DependencySummary{
			OwnerName:       d.OwnerName,
			PackageName:     d.PackageName,
			PackageSlug:     d.PackageSlug,
			VersionNumber:   d.VersionNumber,
			IsPinned:        d.PackagePinned,
			TotalDownloads:  d.TotalDownloads,
			FullVersionName: d.OwnerName + "-" + d.PackageName + "-" + d.VersionNumber,
		})
	}
	return out, nil
}

// Dependants returns the visible packages that depend on this one
// through any of their versions.
func (s *Service) Dependants(packageID int64) ([]models.Package, error) {
	packages, err := s.store.ListDependantPackages(packageID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(packages))
	for _, p := range packages {
		ids = append(ids, p.ID)
	}
	versionsByPkg, err := s.store.VersionsByPackageIDs(ids)
	if err != nil {
		return nil, err
	}
	visible := packages[:0]
	for i := range packages {
		if isEffectivelyVisible(&packages[i], versionsByPkg[packages[i].ID]) {
			visible = append(visible, packages[i])
		}
	}
	return visible, nil
}
