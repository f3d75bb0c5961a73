package registry

import (
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ResolveDownload resolves (owner, package, version number) to the
// stored archive reference, counting the download as a side effect.
// Owner and package are matched by slug first, then by display name,
// since install links carry names rather than slugs.
func (s *Service) ResolveDownload(owner, pkgRef, versionNumber, remoteIP string) (string, error) {
	pkg, err := s.store.GetPackage(owner, pkgRef)
	if err != nil {
		pkg, err = s.store.GetPackageByOwnerName(owner, pkgRef)
		if err != nil {
			return "", err
		}
	}
	ver, err := s.store.GetVersion(pkg.ID, versionNumber)
	if err != nil {
		return "", err
	}
	if err := s.MaybeCountDownload(ver.ID, remoteIP); err != nil {
		return "", err
	}
	return s.absoluteURL(ver.File), nil
}

// MaybeCountDownload counts one download for the version unless the same
// source IP already counted within the cooldown window. An unresolvable
// IP is a silent no-op, not an error.
func (s *Service) MaybeCountDownload(versionID int64, remoteIP string) error {
	ip := net.ParseIP(remoteIP)
	if ip == nil {
		return nil
	}
	now := time.Now().UTC()
	var counted bool
	err := s.store.InTx(func(tx *sqlx.Tx) error {
		ev, created, err := s.store.GetOrCreateDownloadEventTx(tx, versionID, ip.String(), now)
		if err != nil {
			return err
		}
		counted = created
		if !created {
			counted = ev.LastDownload.Add(s.cooldown).Before(now)
			if err := s.store.RecordRepeatDownloadTx(tx, ev.ID, counted, now); err != nil {
				return err
			}
		}
		if counted {
			return s.store.IncrementVersionDownloadsTx(tx, versionID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if counted {
		s.log.WithFields(logrus.Fields{"version_id": versionID}).Debug("download counted")
	}
	return nil
}
