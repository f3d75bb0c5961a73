package registry

import (
	"strconv"
	"time"

	"modvault/internal/models"
	"modvault/internal/webhooks"
)

// announceRelease builds the release payload and hands it to every
// active release webhook. It runs after the version's transaction has
// committed; failures are logged and never unwind the publication.
func (s *Service) announceRelease(pkg *models.Package, ver *models.PackageVersion) {
	total, err := s.TotalDownloads(pkg.ID)
	if err != nil {
		s.log.WithError(err).Warn("release announcement skipped")
		return
	}
	payload := webhooks.NewReleasePayload(webhooks.ReleaseInfo{
		Name:           pkg.Name,
		VersionNumber:  ver.VersionNumber,
		Description:    ver.Description,
		PackageURL:     s.PackageURL(pkg),
		ThumbnailURL:   s.absoluteURL(ver.Icon),
		OwnerName:      pkg.OwnerName,
		ProviderName:   s.site.ServerName,
		ProviderURL:    s.site.Protocol + s.site.ServerName + "/",
		TotalDownloads: strconv.FormatInt(total, 10),
		Timestamp:      time.Now(),
	})
	subscribers, err := s.store.ActiveWebhooks(models.WebhookTypeRelease)
	if err != nil {
		s.log.WithError(err).Warn("could not list webhook subscribers")
		return
	}
	for _, hook := range subscribers {
		s.hooks.Dispatch(hook.URL, payload)
	}
}
