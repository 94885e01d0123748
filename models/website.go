package models

import (
	"errors"
	"fmt"
	"time"
)

// Website is a monitored site. Each website belongs to exactly one user,
// identified by the username asserted by the identity provider.
type Website struct {
	ID        int64     `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	Name      string    `db:"name" json:"name"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// websiteStore is the slice of the database the website registry needs.
// Every read and mutation is keyed by (id, owner) so that ownership is
// re-verified on each call rather than cached.
type websiteStore interface {
	PutWebsite(*Website) error
	GetWebsite(id int64, userID string) (Website, error)
	GetWebsites(userID string) ([]Website, error)
	GetAllWebsites() ([]Website, error)
	UpdateWebsite(*Website) error
	RemoveWebsite(id int64, userID string) error
}

// Timestamp format used for the lastScan display field.
const displayTimeFormat = "2006-01-02 15:04:05"

// WebsiteView is a website decorated with the outcome of its most recent
// scan. Status is "up" or "down" per the latest scan's IsUp flag, and empty
// when the website has never been scanned.
type WebsiteView struct {
	Website
	Status   string `json:"status,omitempty"`
	SSLValid *bool  `json:"sslValid,omitempty"`
	LastScan string `json:"lastScan,omitempty"`
}

// Create validates and persists a new website owned by w.UserID.
// The URL is stored as given; normalization is left to the caller.
func (w *Website) Create(store websiteStore) error {
	if w.Name == "" || w.URL == "" {
		return fmt.Errorf("name and URL are required: %w", ErrMissingField)
	}
	if w.UserID == "" {
		return ErrUnauthenticated
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	return store.PutWebsite(w)
}

// Get fetches a single website by id, verifying ownership.
func GetWebsite(id int64, userID string, store websiteStore) (Website, error) {
	if userID == "" {
		return Website{}, ErrUnauthenticated
	}
	return store.GetWebsite(id, userID)
}

// Update overwrites the website's name and URL. Ownership is re-checked by
// the store; a mismatch surfaces as ErrNotFound.
func (w *Website) Update(store websiteStore) error {
	if w.Name == "" || w.URL == "" {
		return fmt.Errorf("name and URL are required: %w", ErrMissingField)
	}
	if w.UserID == "" {
		return ErrUnauthenticated
	}
	w.UpdatedAt = time.Now()
	return store.UpdateWebsite(w)
}

// DeleteWebsite removes a website and its entire scan history. The store
// performs both deletions in a single transaction so a failed website delete
// never leaves the scan history half-removed.
func DeleteWebsite(id int64, userID string, store websiteStore) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return store.RemoveWebsite(id, userID)
}

// ListWebsites returns the owner's websites, each joined with its most
// recent scan result.
func ListWebsites(userID string, sites websiteStore, scans scanStore) ([]WebsiteView, error) {
	list, err := sites.GetWebsites(userID)
	if err != nil {
		return nil, err
	}
	views := make([]WebsiteView, 0, len(list))
	for _, w := range list {
		view := WebsiteView{Website: w}
		scan, err := scans.GetLatestScan(w.ID)
		if err == nil {
			if scan.IsUp {
				view.Status = "up"
			} else {
				view.Status = "down"
			}
			view.SSLValid = scan.SSLValid
			view.LastScan = scan.ScanDate.Format(displayTimeFormat)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
