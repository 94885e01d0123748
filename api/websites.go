package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sitewatch/sitewatch-backend/models"
)

// websiteParams is the request body shared by the website mutations.
type websiteParams struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
}

// Extracts the {id} path parameter as a website ID.
func websiteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// listWebsites handles GET /websites.
// With ?username= set, each website is joined with its latest scan; without
// it, the bare website rows are returned.
func (api *API) listWebsites(r *http.Request) response {
	username := r.URL.Query().Get("username")
	if username == "" {
		sites, err := api.Database.GetAllWebsites()
		if err != nil {
			return serverError(err.Error())
		}
		return response{StatusCode: http.StatusOK, Response: sites}
	}
	views, err := models.ListWebsites(username, api.Database, api.Database)
	if err != nil {
		return serverError(err.Error())
	}
	return response{StatusCode: http.StatusOK, Response: views}
}

// createWebsite handles POST /websites.
func (api *API) createWebsite(r *http.Request) response {
	var params websiteParams
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	site := models.Website{Name: params.Name, URL: params.URL, UserID: params.Username}
	if err := site.Create(api.Database); err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusCreated, Response: site}
}

// getWebsite handles GET /websites/{id}.
func (api *API) getWebsite(r *http.Request) response {
	id, ok := websiteID(r)
	if !ok {
		return badRequest("Invalid website ID")
	}
	site, err := models.GetWebsite(id, r.URL.Query().Get("username"), api.Database)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: site}
}

// updateWebsite handles PUT /websites/{id}.
func (api *API) updateWebsite(r *http.Request) response {
	id, ok := websiteID(r)
	if !ok {
		return badRequest("Invalid website ID")
	}
	var params websiteParams
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	site := models.Website{ID: id, Name: params.Name, URL: params.URL, UserID: params.Username}
	if err := site.Update(api.Database); err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: site}
}

// deleteWebsite handles DELETE /websites/{id}. The website's scan history
// goes with it.
func (api *API) deleteWebsite(r *http.Request) response {
	id, ok := websiteID(r)
	if !ok {
		return badRequest("Invalid website ID")
	}
	var params websiteParams
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	if err := models.DeleteWebsite(id, params.Username, api.Database); err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: struct {
		Message string `json:"message"`
	}{"Website deleted successfully"}}
}

// scan handles POST /scan: probe the website now and append the outcome to
// its history. Repeat calls keep accumulating history rows.
func (api *API) scan(r *http.Request) response {
	var params struct {
		WebsiteID int64  `json:"websiteId"`
		Username  string `json:"username"`
	}
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	if params.WebsiteID == 0 {
		return badRequest("Website ID is required")
	}
	site, scan, err := models.RecordScan(params.WebsiteID, params.Username, api.Database, api.Database, api.probe())
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: struct {
		Website    models.Website    `json:"website"`
		ScanResult models.ScanResult `json:"scanResult"`
	}{site, scan}}
}
