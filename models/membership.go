package models

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sitewatch/sitewatch-backend/directory"
)

// Role of a user within an organization. Admin implies every member
// capability plus the right to mutate roles and invitations.
type Role string

// The two recognized roles.
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Membership associates a user with an organization under exactly one role.
// A user holds at most one membership per organization.
type Membership struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"userId"`
	OrganizationID int64     `db:"organization_id" json:"organizationId"`
	Role           Role      `db:"role" json:"role"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// MemberView is a membership together with the display email resolved from
// the identity provider.
type MemberView struct {
	Membership
	Email string `json:"email"`
}

// membershipStore is the slice of the database the role authority needs.
type membershipStore interface {
	PutMembership(*Membership) error
	GetMembership(orgID int64, userID string) (Membership, error)
	GetMemberships(orgID int64) ([]Membership, error)
	UpdateMembership(*Membership) error
	RemoveMembership(id int64) error
}

// UserLookup resolves a stored user identifier to its directory email.
// The identity provider signals a missing account with
// directory.ErrUserNotFound.
type UserLookup interface {
	GetUserEmail(ctx context.Context, userID string) (string, error)
}

// Provisioner creates identity-provider accounts for invited users and
// returns the provider's canonical user identifier.
type Provisioner interface {
	CreateUser(ctx context.Context, email, temporaryPassword string) (string, error)
}

// SplitByExistence partitions members into those the directory still knows
// and those it reports as nonexistent. Only the specific "user not found"
// condition marks a member stale; any other lookup failure keeps the member,
// with the stored user ID standing in for the email. Pure with respect to the
// store: callers decide what to do with the stale set.
func SplitByExistence(ctx context.Context, members []Membership, dir UserLookup) (active []MemberView, stale []Membership) {
	for _, m := range members {
		email, err := dir.GetUserEmail(ctx, m.UserID)
		switch {
		case errors.Is(err, directory.ErrUserNotFound):
			stale = append(stale, m)
		case err != nil:
			log.Printf("directory lookup for %s failed: %v", m.UserID, err)
			active = append(active, MemberView{Membership: m, Email: m.UserID})
		case email == "":
			active = append(active, MemberView{Membership: m, Email: m.UserID})
		default:
			active = append(active, MemberView{Membership: m, Email: email})
		}
	}
	return active, stale
}

// ListMembers returns the members of an organization with their directory
// emails. Memberships whose users no longer exist in the identity provider
// are dropped from the result and deleted from the store, keeping the
// membership table consistent with the provider's view of active users.
func ListMembers(ctx context.Context, orgID int64, store membershipStore, dir UserLookup) ([]MemberView, error) {
	members, err := store.GetMemberships(orgID)
	if err != nil {
		return nil, err
	}
	active, stale := SplitByExistence(ctx, members, dir)
	for _, m := range stale {
		if err := store.RemoveMembership(m.ID); err != nil {
			return nil, err
		}
		log.Printf("removed member %s from organization %d: user no longer exists", m.UserID, orgID)
	}
	if active == nil {
		active = []MemberView{}
	}
	return active, nil
}

// GetMemberRole looks up a single user's membership in an organization.
func GetMemberRole(orgID int64, userID string, store membershipStore) (Membership, error) {
	return store.GetMembership(orgID, userID)
}

// requireAdmin checks, with a fresh query, that userID holds the admin role
// in the organization.
func requireAdmin(orgID int64, userID string, store membershipStore) error {
	m, err := store.GetMembership(orgID, userID)
	if err != nil || m.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// InviteMember provisions an identity-provider account for email with a
// fresh temporary credential and records a membership for the returned
// canonical user ID. Only admins of the organization may invite. If
// provisioning fails no membership is created.
func InviteMember(ctx context.Context, email string, role Role, orgID int64, inviterUserID string, store membershipStore, dir Provisioner) (Membership, error) {
	if email == "" || inviterUserID == "" {
		return Membership{}, fmt.Errorf("email and inviter are required: %w", ErrMissingField)
	}
	if !role.Valid() {
		return Membership{}, ErrInvalidRole
	}
	if err := requireAdmin(orgID, inviterUserID, store); err != nil {
		return Membership{}, fmt.Errorf("only admins can invite users: %w", err)
	}
	userID, err := dir.CreateUser(ctx, email, directory.NewTemporaryPassword())
	if err != nil {
		return Membership{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	now := time.Now()
	m := Membership{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.PutMembership(&m); err != nil {
		return Membership{}, err
	}
	return m, nil
}

// UpdateRole sets a member's role. Only admins of the organization may update
// roles; the updater's own role is re-queried, never cached. Nothing prevents
// an admin from demoting themselves below the last admin.
func UpdateRole(targetUserID string, role Role, orgID int64, updaterUserID string, store membershipStore) (Membership, error) {
	if updaterUserID == "" {
		return Membership{}, fmt.Errorf("updater is required: %w", ErrMissingField)
	}
	if !role.Valid() {
		return Membership{}, ErrInvalidRole
	}
	if err := requireAdmin(orgID, updaterUserID, store); err != nil {
		return Membership{}, fmt.Errorf("only admins can update roles: %w", err)
	}
	m, err := store.GetMembership(orgID, targetUserID)
	if err != nil {
		return Membership{}, err
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	if err := store.UpdateMembership(&m); err != nil {
		return Membership{}, err
	}
	return m, nil
}
