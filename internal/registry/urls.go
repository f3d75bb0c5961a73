package registry

import (
	"fmt"
	"strings"

	"modvault/internal/models"
)

// PackageURL is the absolute detail URL for a package.
func (s *Service) PackageURL(p *models.Package) string {
	return fmt.Sprintf("%s%s/packages/%s/%s/", s.site.Protocol, s.site.ServerName, p.OwnerSlug, p.Slug)
}

// DownloadURL resolves to the counted redirect endpoint.
func (s *Service) DownloadURL(p *models.Package, v *models.PackageVersion) string {
	return fmt.Sprintf("%s%s/packages/%s/%s/versions/%s/download", s.site.Protocol, s.site.ServerName, p.OwnerSlug, p.Slug, v.VersionNumber)
}

// InstallURL is the custom-scheme link consumed by client install
// tooling.
func (s *Service) InstallURL(p *models.Package, v *models.PackageVersion) string {
	return fmt.Sprintf("ror2mm://v1/install/%s/%s/%s/%s/", s.site.ServerName, p.OwnerName, p.Name, v.VersionNumber)
}

// absoluteURL prefixes server-relative references with the site origin.
func (s *Service) absoluteURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return s.site.Protocol + s.site.ServerName + ref
}
