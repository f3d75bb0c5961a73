package registry

import (
	"modvault/internal/cache"
	"modvault/internal/models"
)

// DeactivatePackageVersion soft-deletes a version. Latest falls back to
// the next-highest active version by derivation; no recache step exists
// to forget.
func (s *Service) DeactivatePackageVersion(actingUserID, versionID int64) error {
	ver, err := s.store.GetVersionByID(versionID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(actingUserID, ver.PackageID); err != nil {
		return err
	}
	if err := s.store.SetVersionActive(versionID, false); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyPackageUpdated)
	return nil
}

// SetPackageDeprecated flips the deprecation flag; data is never
// deleted.
func (s *Service) SetPackageDeprecated(actingUserID, packageID int64, deprecated bool) error {
	if err := s.requireOwnership(actingUserID, packageID); err != nil {
		return err
	}
	if err := s.store.SetPackageDeprecated(packageID, deprecated); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyPackageUpdated)
	return nil
}

// SetPackagePinned is operator-only: pinned packages sort first in
// every listing.
func (s *Service) SetPackagePinned(actingUserID, packageID int64, pinned bool) error {
	if err := s.requireAdmin(actingUserID); err != nil {
		return err
	}
	if err := s.store.SetPackagePinned(packageID, pinned); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyPackageUpdated)
	return nil
}

// SetPackageActive is operator-only soft removal from the registry.
func (s *Service) SetPackageActive(actingUserID, packageID int64, active bool) error {
	if err := s.requireAdmin(actingUserID); err != nil {
		return err
	}
	if err := s.store.SetPackageActive(packageID, active); err != nil {
		return err
	}
	s.cache.Invalidate(cache.AnyPackageUpdated)
	return nil
}

// requireOwnership passes for admins and members of the owning
// identity.
func (s *Service) requireOwnership(userID, packageID int64) error {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	pkg, err := s.store.GetPackageByID(packageID)
	if err != nil {
		return err
	}
	member, err := s.store.IsMember(userID, pkg.OwnerID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}
