package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	// Imports postgresql driver for database/sql
	_ "github.com/lib/pq"
	"gopkg.in/gorp.v2"

	"github.com/sitewatch/sitewatch-backend/models"
)

// SQLDatabase is a Database interface backed by postgresql.
type SQLDatabase struct {
	cfg  Config // Configuration to define the DB connection.
	conn *gorp.DbMap
}

func getConnectionString(cfg Config) string {
	connectionString := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		url.PathEscape(cfg.DbUsername),
		url.PathEscape(cfg.DbPass),
		url.PathEscape(cfg.DbHost),
		url.PathEscape(cfg.DbName))
	return connectionString
}

// InitSQLDatabase creates a DB connection based on information in a Config,
// and returns a pointer to the resulting SQLDatabase object. If connection
// fails, returns an error.
func InitSQLDatabase(cfg Config) (*SQLDatabase, error) {
	connectionString := getConnectionString(cfg)
	log.Printf("Connecting to Postgres DB ...\n")
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	dbmap := &gorp.DbMap{Db: conn, Dialect: gorp.PostgresDialect{}}
	dbmap.AddTableWithName(models.Website{}, "websites").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.ScanResult{}, "scan_results").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.Organization{}, "organizations").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.Membership{}, "user_organizations").SetKeys(true, "ID")
	return &SQLDatabase{cfg: cfg, conn: dbmap}, nil
}

// notFoundOr converts sql.ErrNoRows into the models taxonomy and leaves any
// other error untouched.
func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// WEBSITE DB FUNCTIONS

// PutWebsite inserts a new website row and assigns its serial ID.
func (db *SQLDatabase) PutWebsite(w *models.Website) error {
	return db.conn.Insert(w)
}

// GetWebsite retrieves one website owned by userID.
func (db *SQLDatabase) GetWebsite(id int64, userID string) (models.Website, error) {
	var w models.Website
	err := db.conn.SelectOne(&w,
		"SELECT * FROM websites WHERE id=$1 AND user_id=$2", id, userID)
	return w, notFoundOr(err)
}

// GetWebsites retrieves all websites owned by userID.
func (db *SQLDatabase) GetWebsites(userID string) ([]models.Website, error) {
	var sites []models.Website
	_, err := db.conn.Select(&sites,
		"SELECT * FROM websites WHERE user_id=$1 ORDER BY id", userID)
	return sites, err
}

// GetAllWebsites retrieves every website row.
func (db *SQLDatabase) GetAllWebsites() ([]models.Website, error) {
	var sites []models.Website
	_, err := db.conn.Select(&sites, "SELECT * FROM websites ORDER BY id")
	return sites, err
}

// UpdateWebsite overwrites name, URL and updated_at of the row matching
// (id, user_id). Returns models.ErrNotFound if no row matched.
func (db *SQLDatabase) UpdateWebsite(w *models.Website) error {
	res, err := db.conn.Exec(
		"UPDATE websites SET name=$1, url=$2, updated_at=$3 WHERE id=$4 AND user_id=$5",
		w.Name, w.URL, w.UpdatedAt, w.ID, w.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveWebsite deletes a website's scan results and then the website itself
// inside one transaction, so neither deletion is visible without the other.
func (db *SQLDatabase) RemoveWebsite(id int64, userID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM scan_results WHERE website_id=$1", id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec("DELETE FROM websites WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if n == 0 {
		tx.Rollback()
		return models.ErrNotFound
	}
	return tx.Commit()
}

// SCAN DB FUNCTIONS

// PutScan appends a new scan result row and assigns its serial ID.
func (db *SQLDatabase) PutScan(scan *models.ScanResult) error {
	return db.conn.Insert(scan)
}

const mostRecentQuery = `
SELECT * FROM scan_results WHERE website_id=$1 ORDER BY scan_date DESC, id DESC LIMIT 1
`

// GetLatestScan retrieves the most recent scan performed on a particular
// website.
func (db *SQLDatabase) GetLatestScan(websiteID int64) (models.ScanResult, error) {
	var scan models.ScanResult
	err := db.conn.SelectOne(&scan, mostRecentQuery, websiteID)
	return scan, notFoundOr(err)
}

// GetScans retrieves all the scans performed for a particular website,
// newest first.
func (db *SQLDatabase) GetScans(websiteID int64) ([]models.ScanResult, error) {
	var scans []models.ScanResult
	_, err := db.conn.Select(&scans,
		"SELECT * FROM scan_results WHERE website_id=$1 ORDER BY scan_date DESC, id DESC", websiteID)
	return scans, err
}

// ORGANIZATION DB FUNCTIONS

// CreateOrganization inserts the organization and the creator's admin
// membership as one transaction. An organization without an admin must never
// become visible.
func (db *SQLDatabase) CreateOrganization(org *models.Organization, creatorUserID string) (models.Membership, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return models.Membership{}, err
	}
	if err := tx.Insert(org); err != nil {
		tx.Rollback()
		return models.Membership{}, err
	}
	now := time.Now()
	m := models.Membership{
		UserID:         creatorUserID,
		OrganizationID: org.ID,
		Role:           models.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.Insert(&m); err != nil {
		tx.Rollback()
		return models.Membership{}, err
	}
	return m, tx.Commit()
}

const userOrganizationsQuery = `
SELECT o.id AS id, o.name AS name, m.role AS role, m.created_at AS created_at
FROM user_organizations m
INNER JOIN organizations o ON m.organization_id = o.id
WHERE m.user_id=$1
ORDER BY o.id
`

// GetUserOrganizations retrieves a user's memberships joined with the name
// of each organization.
func (db *SQLDatabase) GetUserOrganizations(userID string) ([]models.UserOrganization, error) {
	var orgs []models.UserOrganization
	_, err := db.conn.Select(&orgs, userOrganizationsQuery, userID)
	return orgs, err
}

// MEMBERSHIP DB FUNCTIONS

// PutMembership inserts a new membership row and assigns its serial ID.
func (db *SQLDatabase) PutMembership(m *models.Membership) error {
	return db.conn.Insert(m)
}

// GetMembership retrieves one user's membership in an organization.
func (db *SQLDatabase) GetMembership(orgID int64, userID string) (models.Membership, error) {
	var m models.Membership
	err := db.conn.SelectOne(&m,
		"SELECT * FROM user_organizations WHERE organization_id=$1 AND user_id=$2", orgID, userID)
	return m, notFoundOr(err)
}

// GetMemberships retrieves all memberships of an organization.
func (db *SQLDatabase) GetMemberships(orgID int64) ([]models.Membership, error) {
	var members []models.Membership
	_, err := db.conn.Select(&members,
		"SELECT * FROM user_organizations WHERE organization_id=$1 ORDER BY id", orgID)
	return members, err
}

// UpdateMembership overwrites role and updated_at of the row matching
// (organization_id, user_id). Last write wins; there is no optimistic
// locking on membership rows.
func (db *SQLDatabase) UpdateMembership(m *models.Membership) error {
	res, err := db.conn.Exec(
		"UPDATE user_organizations SET role=$1, updated_at=$2 WHERE organization_id=$3 AND user_id=$4",
		m.Role, m.UpdatedAt, m.OrganizationID, m.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveMembership deletes a membership row by ID.
func (db *SQLDatabase) RemoveMembership(id int64) error {
	_, err := db.conn.Exec("DELETE FROM user_organizations WHERE id=$1", id)
	return err
}

// ClearTables nukes every table. ** Should only be used during testing **
func (db *SQLDatabase) ClearTables() error {
	for _, table := range []string{"scan_results", "websites", "user_organizations", "organizations"} {
		if _, err := db.conn.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return err
		}
	}
	return nil
}
