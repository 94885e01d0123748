package models

import (
	"time"

	"github.com/sitewatch/sitewatch-backend/prober"
)

// ScanResult stores the outcome of a single probe against a website.
// Rows are immutable once created; the scan history of a website is
// append-only, and the entry with the greatest ScanDate is its "latest" scan.
type ScanResult struct {
	ID             int64      `db:"id" json:"id"`
	WebsiteID      int64      `db:"website_id" json:"websiteId"`
	IsUp           bool       `db:"is_up" json:"isUp"`
	SSLValid       *bool      `db:"ssl_valid" json:"sslValid"`
	SSLExpiryDate  *time.Time `db:"ssl_expiry_date" json:"sslExpiryDate"`
	ResponseTimeMs *int64     `db:"response_time" json:"responseTime"`
	ScanDate       time.Time  `db:"scan_date" json:"scanDate"`
}

// scanStore is a simple interface for appending and reading scan history.
type scanStore interface {
	PutScan(*ScanResult) error
	GetLatestScan(websiteID int64) (ScanResult, error)
}

// ProbeFunc performs one connectivity check against a URL.
type ProbeFunc func(url string) prober.Result

// RecordScan probes the website identified by websiteID, which must be owned
// by userID, and appends the outcome to its scan history. Probe failures are
// not errors; they are recorded as "down" results. Every call creates a new
// history row.
func RecordScan(websiteID int64, userID string, sites websiteStore, scans scanStore, probe ProbeFunc) (Website, ScanResult, error) {
	if userID == "" {
		return Website{}, ScanResult{}, ErrUnauthenticated
	}
	site, err := sites.GetWebsite(websiteID, userID)
	if err != nil {
		return Website{}, ScanResult{}, err
	}
	result := probe(site.URL)
	scan := ScanResult{
		WebsiteID:      site.ID,
		IsUp:           result.IsUp,
		SSLValid:       result.SSLValid,
		SSLExpiryDate:  result.SSLExpiryDate,
		ResponseTimeMs: result.ResponseTimeMs,
		ScanDate:       time.Now(),
	}
	if err := scans.PutScan(&scan); err != nil {
		return Website{}, ScanResult{}, err
	}
	return site, scan, nil
}
