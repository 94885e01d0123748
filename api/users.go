package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitewatch/sitewatch-backend/models"
)

// inviteMember handles POST /users/invite. Admin-only; provisions the
// invitee in the identity provider, which mails them their temporary
// credential, then records the membership.
func (api *API) inviteMember(r *http.Request) response {
	var params struct {
		Email           string      `json:"email"`
		Role            models.Role `json:"role"`
		OrganizationID  int64       `json:"organizationId"`
		InviterUsername string      `json:"inviterUsername"`
	}
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	if params.OrganizationID == 0 {
		return badRequest("Organization ID is required")
	}
	m, err := models.InviteMember(r.Context(), params.Email, params.Role,
		params.OrganizationID, params.InviterUsername, api.Database, api.Directory)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusCreated, Response: struct {
		Message          string            `json:"message"`
		UserOrganization models.Membership `json:"userOrganization"`
	}{"User invited successfully. They will receive an email with login instructions.", m}}
}

// updateRole handles PUT /users/{userId}/role. Admin-only.
func (api *API) updateRole(r *http.Request) response {
	targetUserID := chi.URLParam(r, "userId")
	var params struct {
		Role            models.Role `json:"role"`
		OrganizationID  int64       `json:"organizationId"`
		UpdaterUsername string      `json:"updaterUsername"`
	}
	if err := decodeBody(r, &params); err != nil {
		return badRequest("could not parse request body: %v", err)
	}
	if params.OrganizationID == 0 {
		return badRequest("Organization ID is required")
	}
	m, err := models.UpdateRole(targetUserID, params.Role, params.OrganizationID,
		params.UpdaterUsername, api.Database)
	if err != nil {
		return errorResponse(err)
	}
	return response{StatusCode: http.StatusOK, Response: struct {
		Message          string            `json:"message"`
		UserOrganization models.Membership `json:"userOrganization"`
	}{"User role updated successfully", m}}
}

// userOrganizations handles GET /users/{userId}/organizations.
func (api *API) userOrganizations(r *http.Request) response {
	userID := chi.URLParam(r, "userId")
	orgs, err := models.ListUserOrganizations(userID, api.Database)
	if err != nil {
		return errorResponse(err)
	}
	if orgs == nil {
		orgs = []models.UserOrganization{}
	}
	return response{StatusCode: http.StatusOK, Response: orgs}
}
