package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"modvault/internal/cache"
	"modvault/internal/models"
)

// Ordering is a listing sort key. Pinned-first and deprecated-last are
// applied before the key; every key sorts descending except name.
type Ordering string

const (
	OrderLastUpdated    Ordering = "last-updated"
	OrderNewest         Ordering = "newest"
	OrderMostDownloaded Ordering = "most-downloaded"
	OrderName           Ordering = "name"
)

// NormalizeOrdering maps unknown inputs to the default ordering.
func NormalizeOrdering(s string) Ordering {
	switch Ordering(s) {
	case OrderNewest, OrderMostDownloaded, OrderName:
		return Ordering(s)
	default:
		return OrderLastUpdated
	}
}

// Scope selects which packages a listing covers. Its cache-vary prefix
// keeps differently-scoped results from ever sharing a cache entry.
type Scope struct {
	kind      string
	ownerSlug string
	packageID int64
}

func ScopeAll() Scope                  { return Scope{kind: "all"} }
func ScopeOwner(ownerSlug string) Scope { return Scope{kind: "owner", ownerSlug: ownerSlug} }
func ScopeDependants(packageID int64) Scope {
	return Scope{kind: "dependants", packageID: packageID}
}

func (sc Scope) cacheVary() string {
	switch sc.kind {
	case "owner":
		return "authorer-" + sc.ownerSlug
	case "dependants":
		return fmt.Sprintf("dependencies-%d", sc.packageID)
	default:
		return "all"
	}
}

// PackageSummary is a listing row: the package plus state derived from
// its version set.
type PackageSummary struct {
	PackageID       int64     `json:"-"`
	Name            string    `json:"name"`
	DisplayName     string    `json:"display_name"`
	Slug            string    `json:"slug"`
	OwnerName       string    `json:"owner"`
	OwnerSlug       string    `json:"owner_slug"`
	FullPackageName string    `json:"full_name"`
	IsPinned        bool      `json:"is_pinned"`
	IsDeprecated    bool      `json:"is_deprecated"`
	TotalDownloads  int64     `json:"total_downloads"`
	VersionNumber   string    `json:"version_number"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon"`
	DateCreated     time.Time `json:"date_created"`
	DateUpdated     time.Time `json:"date_updated"`
	UUID4           uuid.UUID `json:"uuid4"`
}

// ListPackages returns visible packages within scope, filtered by the
// search query and ordered. Results are cached under the composed
// cache-vary key and busted by any package write.
func (s *Service) ListPackages(scope Scope, query string, ordering Ordering) ([]PackageSummary, error) {
	key := scope.cacheVary() + "." + query + "." + string(ordering)
	if cached, ok := s.cache.Get(key); ok {
		if summaries, ok := cached.([]PackageSummary); ok {
			return summaries, nil
		}
	}

	summaries, err := s.computeListing(scope, query, ordering)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, summaries, cache.AnyPackageUpdated)
	return summaries, nil
}

func (s *Service) computeListing(scope Scope, query string, ordering Ordering) ([]PackageSummary, error) {
	var (
		packages []models.Package
		err      error
	)
	switch scope.kind {
	case "owner":
		ident, err := s.store.GetIdentityBySlug(scope.ownerSlug)
		if err != nil {
			return nil, err
		}
		packages, err = s.store.ListPackagesByOwner(ident.ID)
		if err != nil {
			return nil, err
		}
	case "dependants":
		packages, err = s.store.ListDependantPackages(scope.packageID)
		if err != nil {
			return nil, err
		}
	default:
		packages, err = s.store.ListPackages()
		if err != nil {
			return nil, err
		}
	}

	ids := make([]int64, 0, len(packages))
	for _, p := range packages {
		ids = append(ids, p.ID)
	}
	versionsByPkg, err := s.store.VersionsByPackageIDs(ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]PackageSummary, 0, len(packages))
	for i := range packages {
		p := &packages[i]
		vs := versionsByPkg[p.ID]
		if !isEffectivelyVisible(p, vs) {
			continue
		}
		latest := latestOf(vs)
		summary := PackageSummary{
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
		}
		if latest != nil {
			summary.VersionNumber = latest.VersionNumber
			summary.Description = latest.Description
			summary.Icon = latest.Icon
		}
		if query != "" && !matchesSearch(&summary, query) {
			continue
		}
		summaries = append(summaries, summary)
	}

	orderSummaries(summaries, ordering)
	return summaries, nil
}

// matchesSearch keeps a package when any search word appears in any of
// the searched fields.
func matchesSearch(p *PackageSummary, query string) bool {
	fields := []string{p.Name, p.Slug, p.OwnerName, p.OwnerSlug, p.Description}
	for _, word := range strings.Fields(strings.ToLower(query)) {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), word) {
				return true
			}
		}
	}
	return false
}

func orderSummaries(summaries []PackageSummary, ordering Ordering) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := &summaries[i], &summaries[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.IsDeprecated != b.IsDeprecated {
			return b.IsDeprecated
		}
		switch ordering {
		case OrderNewest:
			return a.DateCreated.After(b.DateCreated)
		case OrderMostDownloaded:
			return a.TotalDownloads > b.TotalDownloads
		case OrderName:
			return a.FullPackageName < b.FullPackageName
		default:
			return a.DateUpdated.After(b.DateUpdated)
		}
	})
}
