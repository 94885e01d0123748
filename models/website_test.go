package models

import (
	"errors"
	"testing"
	"time"

	"github.com/sitewatch/sitewatch-backend/prober"
)

type fakeWebsiteStore struct {
	sites  map[int64]Website
	nextID int64
}

func newFakeWebsiteStore() *fakeWebsiteStore {
	return &fakeWebsiteStore{sites: make(map[int64]Website)}
}

func (s *fakeWebsiteStore) PutWebsite(w *Website) error {
	s.nextID++
	w.ID = s.nextID
	s.sites[w.ID] = *w
	return nil
}

func (s *fakeWebsiteStore) GetWebsite(id int64, userID string) (Website, error) {
	w, ok := s.sites[id]
	if !ok || w.UserID != userID {
		return Website{}, ErrNotFound
	}
	return w, nil
}

func (s *fakeWebsiteStore) GetWebsites(userID string) ([]Website, error) {
	var sites []Website
	for id := int64(1); id <= s.nextID; id++ {
		if w, ok := s.sites[id]; ok && w.UserID == userID {
			sites = append(sites, w)
		}
	}
	return sites, nil
}

func (s *fakeWebsiteStore) GetAllWebsites() ([]Website, error) {
	var sites []Website
	for id := int64(1); id <= s.nextID; id++ {
		if w, ok := s.sites[id]; ok {
			sites = append(sites, w)
		}
	}
	return sites, nil
}

func (s *fakeWebsiteStore) UpdateWebsite(w *Website) error {
	existing, ok := s.sites[w.ID]
	if !ok || existing.UserID != w.UserID {
		return ErrNotFound
	}
	s.sites[w.ID] = *w
	return nil
}

func (s *fakeWebsiteStore) RemoveWebsite(id int64, userID string) error {
	w, ok := s.sites[id]
	if !ok || w.UserID != userID {
		return ErrNotFound
	}
	delete(s.sites, id)
	return nil
}

type fakeScanStore struct {
	scans map[int64][]ScanResult
}

func newFakeScanStore() *fakeScanStore {
	return &fakeScanStore{scans: make(map[int64][]ScanResult)}
}

func (s *fakeScanStore) PutScan(scan *ScanResult) error {
	s.scans[scan.WebsiteID] = append(s.scans[scan.WebsiteID], *scan)
	return nil
}

func (s *fakeScanStore) GetLatestScan(websiteID int64) (ScanResult, error) {
	history := s.scans[websiteID]
	if len(history) == 0 {
		return ScanResult{}, ErrNotFound
	}
	latest := history[0]
	for _, scan := range history[1:] {
		if scan.ScanDate.After(latest.ScanDate) {
			latest = scan
		}
	}
	return latest, nil
}

func TestCreateWebsiteValidation(t *testing.T) {
	store := newFakeWebsiteStore()
	w := Website{Name: "Example", UserID: "alice"}
	if err := w.Create(store); !errors.Is(err, ErrMissingField) {
		t.Errorf("Create without URL should fail validation, got %v", err)
	}
	w = Website{Name: "Example", URL: "https://example.com"}
	if err := w.Create(store); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Create without owner should fail authentication, got %v", err)
	}
	if len(store.sites) != 0 {
		t.Errorf("Failed creates should not persist anything, got %d rows", len(store.sites))
	}
	w = Website{Name: "Example", URL: "https://example.com", UserID: "alice"}
	if err := w.Create(store); err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if w.ID == 0 || w.CreatedAt.IsZero() {
		t.Errorf("Create should assign ID and timestamps, got %+v", w)
	}
}

func TestUpdateWebsiteOwnership(t *testing.T) {
	store := newFakeWebsiteStore()
	w := Website{Name: "Example", URL: "https://example.com", UserID: "alice"}
	if err := w.Create(store); err != nil {
		t.Fatal(err)
	}
	update := Website{ID: w.ID, Name: "Renamed", URL: w.URL, UserID: "mallory"}
	if err := update.Update(store); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update by non-owner should be NotFound, got %v", err)
	}
	if store.sites[w.ID].Name != "Example" {
		t.Errorf("Failed update should leave the row unchanged")
	}
}

func TestListWebsitesStatus(t *testing.T) {
	sites := newFakeWebsiteStore()
	scans := newFakeScanStore()
	up := Website{Name: "Up", URL: "https://up.example.com", UserID: "alice"}
	down := Website{Name: "Down", URL: "https://down.example.com", UserID: "alice"}
	never := Website{Name: "Never", URL: "https://never.example.com", UserID: "alice"}
	for _, w := range []*Website{&up, &down, &never} {
		if err := w.Create(sites); err != nil {
			t.Fatal(err)
		}
	}
	valid := true
	// An older down result followed by a newer up result: the latest wins.
	scans.PutScan(&ScanResult{WebsiteID: up.ID, IsUp: false, ScanDate: time.Now().Add(-time.Hour)})
	scans.PutScan(&ScanResult{WebsiteID: up.ID, IsUp: true, SSLValid: &valid, ScanDate: time.Now()})
	scans.PutScan(&ScanResult{WebsiteID: down.ID, IsUp: false, ScanDate: time.Now()})

	views, err := ListWebsites("alice", sites, scans)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 3 {
		t.Fatalf("Expected 3 websites, got %d", len(views))
	}
	byName := make(map[string]WebsiteView)
	for _, v := range views {
		byName[v.Name] = v
	}
	if v := byName["Up"]; v.Status != "up" || v.SSLValid == nil || !*v.SSLValid || v.LastScan == "" {
		t.Errorf("Expected up website with valid SSL and lastScan, got %+v", v)
	}
	if v := byName["Down"]; v.Status != "down" {
		t.Errorf("Expected down status, got %q", v.Status)
	}
	if v := byName["Never"]; v.Status != "" || v.LastScan != "" || v.SSLValid != nil {
		t.Errorf("Never-scanned website should have empty status fields, got %+v", v)
	}
}

func TestRecordScan(t *testing.T) {
	sites := newFakeWebsiteStore()
	scans := newFakeScanStore()
	w := Website{Name: "Example", URL: "https://example.com", UserID: "alice"}
	if err := w.Create(sites); err != nil {
		t.Fatal(err)
	}
	downProbe := func(string) prober.Result { return prober.Result{} }

	if _, _, err := RecordScan(w.ID, "", sites, scans, downProbe); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Scan without actor should be Unauthenticated, got %v", err)
	}
	if _, _, err := RecordScan(w.ID, "mallory", sites, scans, downProbe); !errors.Is(err, ErrNotFound) {
		t.Errorf("Scan of someone else's website should be NotFound, got %v", err)
	}
	if len(scans.scans[w.ID]) != 0 {
		t.Fatal("Failed scans should not persist history rows")
	}

	site, scan, err := RecordScan(w.ID, "alice", sites, scans, downProbe)
	if err != nil {
		t.Fatalf("Scan should succeed: %v", err)
	}
	if site.ID != w.ID {
		t.Errorf("Scan should return the probed website, got %+v", site)
	}
	if scan.IsUp || scan.SSLValid != nil || scan.ResponseTimeMs != nil {
		t.Errorf("Failed probe should record a bare down result, got %+v", scan)
	}
	// Repeat scans accumulate history; no dedup is intended.
	RecordScan(w.ID, "alice", sites, scans, downProbe)
	if len(scans.scans[w.ID]) != 2 {
		t.Errorf("Expected 2 history rows after 2 scans, got %d", len(scans.scans[w.ID]))
	}
}
