package registry

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"modvault/internal/models"
	"modvault/internal/store"
)

// GetOrCreateIdentityForUser returns the user's publishing identity,
// creating one named after the user on first use. Idempotent: a user
// with existing memberships gets the first one back. Creation writes
// the identity and its owner membership in one transaction, so an
// identity with zero members is never observable.
func (s *Service) GetOrCreateIdentityForUser(user *models.User) (*models.UploaderIdentity, error) {
	if m, err := s.store.FirstMembershipForUser(user.ID); err == nil {
		return s.store.GetIdentityByID(m.IdentityID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var ident *models.UploaderIdentity
	err := s.store.InTx(func(tx *sqlx.Tx) error {
		var err error
		ident, err = s.store.CreateIdentityWithOwnerTx(tx, user.Username, Slugify(user.Username), user.ID)
		return err
	})
	if errors.Is(err, store.ErrConflict) {
		// Lost a race against a concurrent first call for the same user:
		// the winner created the identity, take its membership.
		if m, err2 := s.store.FirstMembershipForUser(user.ID); err2 == nil {
			return s.store.GetIdentityByID(m.IdentityID)
		}
		// The name is taken by an identity the user is not a member of.
		return nil, fmt.Errorf("identity name %q is taken", user.Username)
	}
	if err != nil {
		return nil, err
	}
	return ident, nil
}

// AddIdentityMember adds a user to an identity. Only members may add
// members.
func (s *Service) AddIdentityMember(actingUserID, identityID, newUserID int64, role models.IdentityRole) error {
	member, err := s.store.IsMember(actingUserID, identityID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	if role != models.IdentityRoleOwner && role != models.IdentityRoleMember {
		return fmt.Errorf("invalid role %q", role)
	}
	return s.store.AddMember(identityID, newUserID, role)
}

// RemoveIdentityMember removes a membership. The last owner cannot be
// removed, so an identity never loses all of its owners.
func (s *Service) RemoveIdentityMember(actingUserID, identityID, userID int64) error {
	actingRole, err := s.store.MemberRole(identityID, actingUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if actingUserID != userID && actingRole != models.IdentityRoleOwner {
		return ErrForbidden
	}
	role, err := s.store.MemberRole(identityID, userID)
	if err != nil {
		return err
	}
	if role == models.IdentityRoleOwner {
		owners, err := s.store.CountOwners(identityID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return fmt.Errorf("cannot remove the last owner")
		}
	}
	return s.store.RemoveMember(identityID, userID)
}
