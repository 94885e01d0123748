package db

import (
	"sort"

	"github.com/sitewatch/sitewatch-backend/models"
)

// Straw-man in-memory database (for testing!)
type MemDatabase struct {
	cfg         Config
	websites    map[int64]models.Website
	scans       map[int64][]models.ScanResult // keyed by website ID
	orgs        map[int64]models.Organization
	memberships map[int64]models.Membership // keyed by membership ID
	nextID      int64
}

// InitMemDatabase returns an empty MemDatabase.
func InitMemDatabase(cfg Config) *MemDatabase {
	return &MemDatabase{
		cfg:         cfg,
		websites:    make(map[int64]models.Website),
		scans:       make(map[int64][]models.ScanResult),
		orgs:        make(map[int64]models.Organization),
		memberships: make(map[int64]models.Membership),
	}
}

func (db *MemDatabase) newID() int64 {
	db.nextID++
	return db.nextID
}

func (db *MemDatabase) PutWebsite(w *models.Website) error {
	w.ID = db.newID()
	db.websites[w.ID] = *w
	return nil
}

func (db *MemDatabase) GetWebsite(id int64, userID string) (models.Website, error) {
	w, ok := db.websites[id]
	if !ok || w.UserID != userID {
		return models.Website{}, models.ErrNotFound
	}
	return w, nil
}

func (db *MemDatabase) GetWebsites(userID string) ([]models.Website, error) {
	var sites []models.Website
	for _, w := range db.websites {
		if w.UserID == userID {
			sites = append(sites, w)
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	return sites, nil
}

func (db *MemDatabase) GetAllWebsites() ([]models.Website, error) {
	var sites []models.Website
	for _, w := range db.websites {
		sites = append(sites, w)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	return sites, nil
}

func (db *MemDatabase) UpdateWebsite(w *models.Website) error {
	existing, ok := db.websites[w.ID]
	if !ok || existing.UserID != w.UserID {
		return models.ErrNotFound
	}
	existing.Name = w.Name
	existing.URL = w.URL
	existing.UpdatedAt = w.UpdatedAt
	db.websites[w.ID] = existing
	*w = existing
	return nil
}

func (db *MemDatabase) RemoveWebsite(id int64, userID string) error {
	w, ok := db.websites[id]
	if !ok || w.UserID != userID {
		// Ownership check failed; the scan history must stay untouched.
		return models.ErrNotFound
	}
	delete(db.scans, id)
	delete(db.websites, id)
	return nil
}

func (db *MemDatabase) PutScan(scan *models.ScanResult) error {
	scan.ID = db.newID()
	db.scans[scan.WebsiteID] = append(db.scans[scan.WebsiteID], *scan)
	return nil
}

func (db *MemDatabase) GetLatestScan(websiteID int64) (models.ScanResult, error) {
	history := db.scans[websiteID]
	if len(history) == 0 {
		return models.ScanResult{}, models.ErrNotFound
	}
	latest := history[0]
	for _, scan := range history[1:] {
		if scan.ScanDate.After(latest.ScanDate) ||
			(scan.ScanDate.Equal(latest.ScanDate) && scan.ID > latest.ID) {
			latest = scan
		}
	}
	return latest, nil
}

func (db *MemDatabase) GetScans(websiteID int64) ([]models.ScanResult, error) {
	scans := append([]models.ScanResult{}, db.scans[websiteID]...)
	sort.Slice(scans, func(i, j int) bool { return scans[i].ScanDate.After(scans[j].ScanDate) })
	return scans, nil
}

func (db *MemDatabase) CreateOrganization(org *models.Organization, creatorUserID string) (models.Membership, error) {
	org.ID = db.newID()
	db.orgs[org.ID] = *org
	m := models.Membership{
		UserID:         creatorUserID,
		OrganizationID: org.ID,
		Role:           models.RoleAdmin,
		CreatedAt:      org.CreatedAt,
		UpdatedAt:      org.UpdatedAt,
	}
	if err := db.PutMembership(&m); err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

func (db *MemDatabase) GetUserOrganizations(userID string) ([]models.UserOrganization, error) {
	var orgs []models.UserOrganization
	for _, m := range db.memberships {
		if m.UserID != userID {
			continue
		}
		org := db.orgs[m.OrganizationID]
		orgs = append(orgs, models.UserOrganization{
			ID:        org.ID,
			Name:      org.Name,
			Role:      m.Role,
			CreatedAt: m.CreatedAt,
		})
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

func (db *MemDatabase) PutMembership(m *models.Membership) error {
	m.ID = db.newID()
	db.memberships[m.ID] = *m
	return nil
}

func (db *MemDatabase) GetMembership(orgID int64, userID string) (models.Membership, error) {
	for _, m := range db.memberships {
		if m.OrganizationID == orgID && m.UserID == userID {
			return m, nil
		}
	}
	return models.Membership{}, models.ErrNotFound
}

func (db *MemDatabase) GetMemberships(orgID int64) ([]models.Membership, error) {
	var members []models.Membership
	for _, m := range db.memberships {
		if m.OrganizationID == orgID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (db *MemDatabase) UpdateMembership(m *models.Membership) error {
	for id, existing := range db.memberships {
		if existing.OrganizationID == m.OrganizationID && existing.UserID == m.UserID {
			existing.Role = m.Role
			existing.UpdatedAt = m.UpdatedAt
			db.memberships[id] = existing
			*m = existing
			return nil
		}
	}
	return models.ErrNotFound
}

func (db *MemDatabase) RemoveMembership(id int64) error {
	delete(db.memberships, id)
	return nil
}

func (db *MemDatabase) ClearTables() error {
	db.websites = make(map[int64]models.Website)
	db.scans = make(map[int64][]models.ScanResult)
	db.orgs = make(map[int64]models.Organization)
	db.memberships = make(map[int64]models.Membership)
	return nil
}
