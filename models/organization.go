package models

import (
	"fmt"
	"time"
)

// Organization groups users who share responsibility for monitored sites.
type Organization struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserOrganization is a membership joined with its organization's name, as
// returned for a user's organization listing.
type UserOrganization struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// organizationStore creates organizations and reads a user's memberships.
// CreateOrganization must insert the organization row and the creator's admin
// membership as one transaction: an organization with no admin is an invalid
// terminal state.
type organizationStore interface {
	CreateOrganization(*Organization, string) (Membership, error)
	GetUserOrganizations(userID string) ([]UserOrganization, error)
}

// CreateOrganization inserts a new organization and makes creatorUserID its
// first admin.
func CreateOrganization(name, creatorUserID string, store organizationStore) (Organization, error) {
	if name == "" || creatorUserID == "" {
		return Organization{}, fmt.Errorf("name and username are required: %w", ErrMissingField)
	}
	now := time.Now()
	org := Organization{Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := store.CreateOrganization(&org, creatorUserID); err != nil {
		return Organization{}, err
	}
	return org, nil
}

// ListUserOrganizations returns every organization the user belongs to,
// with the user's role in each.
func ListUserOrganizations(userID string, store organizationStore) ([]UserOrganization, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required: %w", ErrMissingField)
	}
	return store.GetUserOrganizations(userID)
}
