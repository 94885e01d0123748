// Package db provides storage for websites, scan history, organizations and
// memberships, backed by postgresql in production and by an in-memory map
// store in tests.
package db

import (
	"flag"
	"os"

	"github.com/sitewatch/sitewatch-backend/models"
)

// Database interface: these are the things that the database should be able
// to do. Slightly more limited than CRUD for all the schemas; ScanResults in
// particular are append-only.
type Database interface {
	// Inserts a new website, assigning its ID.
	PutWebsite(*models.Website) error
	// Retrieves a website by id, verifying ownership.
	GetWebsite(id int64, userID string) (models.Website, error)
	// Retrieves all websites owned by a user.
	GetWebsites(userID string) ([]models.Website, error)
	// Retrieves every website regardless of owner.
	GetAllWebsites() ([]models.Website, error)
	// Updates name and URL of a website, verifying ownership.
	UpdateWebsite(*models.Website) error
	// Deletes a website and its scan history in one transaction.
	RemoveWebsite(id int64, userID string) error

	// Appends a scan result, assigning its ID.
	PutScan(*models.ScanResult) error
	// Retrieves the most recent scan for a website.
	GetLatestScan(websiteID int64) (models.ScanResult, error)
	// Retrieves all scans for a website, newest first.
	GetScans(websiteID int64) ([]models.ScanResult, error)

	// Inserts an organization plus its creator's admin membership in one
	// transaction, and returns that membership.
	CreateOrganization(org *models.Organization, creatorUserID string) (models.Membership, error)
	// Retrieves a user's memberships joined with organization names.
	GetUserOrganizations(userID string) ([]models.UserOrganization, error)

	// Inserts a membership, assigning its ID.
	PutMembership(*models.Membership) error
	// Retrieves one user's membership in an organization.
	GetMembership(orgID int64, userID string) (models.Membership, error)
	// Retrieves all memberships of an organization.
	GetMemberships(orgID int64) ([]models.Membership, error)
	// Updates a membership's role, keyed by (organization, user).
	UpdateMembership(*models.Membership) error
	// Deletes a membership row by its ID.
	RemoveMembership(id int64) error

	ClearTables() error
}

// Config is a configuration struct for a Database and the service around it.
type Config struct {
	Port       string
	DbHost     string
	DbName     string
	DbUsername string
	DbPass     string

	AwsRegion         string
	CognitoUserPoolID string
	AwsAccessKeyID    string
	AwsSecretKey      string

	AllowedOrigins string
}

// Default configuration values. Can be overwritten by env vars of the same name.
var configDefaults = map[string]string{
	"PORT":         "8080",
	"DB_HOST":      "localhost",
	"DB_NAME":      "sitewatch",
	"DB_USERNAME":  "postgres",
	"DB_PASSWORD":  "postgres",
	"TEST_DB_NAME": "sitewatch_test",
}

func getEnvOrDefault(varName string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		envVar = configDefaults[varName]
	}
	return envVar
}

// LoadEnvironmentVariables loads relevant environment variables into a
// Config object.
func LoadEnvironmentVariables() (Config, error) {
	config := Config{
		Port:              getEnvOrDefault("PORT"),
		DbHost:            getEnvOrDefault("DB_HOST"),
		DbName:            getEnvOrDefault("DB_NAME"),
		DbUsername:        getEnvOrDefault("DB_USERNAME"),
		DbPass:            getEnvOrDefault("DB_PASSWORD"),
		AwsRegion:         getEnvOrDefault("AWS_REGION"),
		CognitoUserPoolID: getEnvOrDefault("COGNITO_USER_POOL_ID"),
		AwsAccessKeyID:    getEnvOrDefault("AWS_ACCESS_KEY_ID"),
		AwsSecretKey:      getEnvOrDefault("AWS_SECRET_ACCESS_KEY"),
		AllowedOrigins:    getEnvOrDefault("ALLOWED_ORIGINS"),
	}
	if flag.Lookup("test.v") != nil {
		// Avoid accidentally wiping the default db during tests.
		config.DbName = getEnvOrDefault("TEST_DB_NAME")
	}
	return config, nil
}
