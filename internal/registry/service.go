// Package registry implements the package/target aggregates: derived
// latest-version state, listings, the version publication pipeline,
// identity ownership, and download counting.
package registry

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"modvault/internal/cache"
	"modvault/internal/store"
	"modvault/internal/webhooks"
)

var (
	// ErrForbidden rejects an operation before any mutation begins.
	ErrForbidden = errors.New("forbidden")
	// ErrHidden marks an entity excluded from public listings; callers
	// surface it as not found.
	ErrHidden = errors.New("not visible")
)

// DefaultDownloadCooldown is the window within which repeat downloads
// from the same IP are not counted again.
const DefaultDownloadCooldown = 10 * time.Minute

// Site identifies the server for absolute URLs and install links.
type Site struct {
	Protocol   string // e.g. "https://"
	ServerName string // e.g. "mods.example.com"
}

type Service struct {
	store    *store.Store
	cache    *cache.Cache
	hooks    webhooks.Dispatcher
	log      *logrus.Logger
	site     Site
	cooldown time.Duration
}

func New(st *store.Store, c *cache.Cache, hooks webhooks.Dispatcher, log *logrus.Logger, site Site) *Service {
	return &Service{
		store:    st,
		cache:    c,
		hooks:    hooks,
		log:      log,
		site:     site,
		cooldown: DefaultDownloadCooldown,
	}
}

// SetDownloadCooldown overrides the dedup window.
func (s *Service) SetDownloadCooldown(d time.Duration) { s.cooldown = d }

// Store exposes the persistence layer for handlers that need direct
// lookups (auth backbone).
func (s *Service) Store() *store.Store { return s.store }
