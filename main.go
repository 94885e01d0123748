// The sitewatch backend: a JSON API for registering websites, probing their
// uptime and TLS certificates on demand, and managing organization
// memberships with role-based access.
package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sitewatch/sitewatch-backend/api"
	"github.com/sitewatch/sitewatch-backend/db"
	"github.com/sitewatch/sitewatch-backend/directory"
	"github.com/sitewatch/sitewatch-backend/prober"
)

// validPort transforms the given port string into the format expected by
// http.ListenAndServe.
func validPort(port string) (string, error) {
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("given portstring %s is invalid", port)
	}
	return fmt.Sprintf(":%s", port), nil
}

// Serves all public endpoints.
func servePublicEndpoints(a *api.API, cfg db.Config) {
	portString, err := validPort(cfg.Port)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Serving on port %s ...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(portString, a.RegisterHandlers()))
}

func main() {
	godotenv.Load()
	cfg, err := db.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	store, err := db.InitSQLDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	// Process-wide singletons: the store pool and the directory client are
	// constructed once and shared read-only across requests.
	a := api.API{
		Database: store,
		Directory: directory.NewCognitoDirectory(
			cfg.AwsRegion, cfg.CognitoUserPoolID, cfg.AwsAccessKeyID, cfg.AwsSecretKey),
		Prober: &prober.Prober{},
	}
	servePublicEndpoints(&a, cfg)
}
