package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sitewatch/sitewatch-backend/models"
)

// Extracts the {id} path parameter as an organization ID.
func organizationID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// createOrganization handles POST /organizations. The creator becomes the
// organization's first admin in the same transaction.
func (api *API) createOrganization(r *http.Request) response {
	var params struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	org, err := models.CreateOrganization(params.Name, params.Username, api.Database)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusCreated, Response: org}
}

// listMembers handles GET /organizations/{id}/members. Listing doubles as
// reconciliation: members whose identity-provider account is gone are
// dropped from the response and their membership rows deleted.
func (api *API) listMembers(r *http.Request) response {
	id, ok := organizationID(r)
	if !ok {
		return badRequest("Invalid organization ID")
	}
	members, err := models.ListMembers(r.Context(), id, api.Database, api.Directory)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: members}
}

// getMemberRole handles GET /organizations/{id}/members/{userId}.
func (api *API) getMemberRole(r *http.Request) response {
	id, ok := organizationID(r)
	if !ok {
		return badRequest("Invalid organization ID")
	}
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		return badRequest("User ID is required")
	}
	m, err := models.GetMemberRole(id, userID, api.Database)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: m}
}
