package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/go-chi/chi/v5"

	"github.com/sitewatch/sitewatch-backend/db"
	"github.com/sitewatch/sitewatch-backend/directory"
	"github.com/sitewatch/sitewatch-backend/models"
	"github.com/sitewatch/sitewatch-backend/prober"
)

////////////////////////////////
//  *****   REST API   *****  //
////////////////////////////////

// API is the HTTP API that this service provides.
// Successful requests respond with the entity (or collection) JSON directly;
// failures respond with {"message": <error>} and a matching status code.
type API struct {
	Database  db.Database
	Directory directory.Directory
	Prober    *prober.Prober

	// probeOverride replaces the real prober in tests.
	probeOverride models.ProbeFunc
}

type response struct {
	StatusCode int
	Message    string
	Response   interface{}
}

type apiHandler func(r *http.Request) response

func (api *API) probe() models.ProbeFunc {
	if api.probeOverride != nil {
		return api.probeOverride
	}
	return api.Prober.Probe
}

func (api *API) wrapper(handler apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := handler(r)
		if response.StatusCode == http.StatusInternalServerError {
			packet := raven.NewPacket(response.Message, raven.NewHttp(r))
			raven.Capture(packet, nil)
		}
		writeJSON(w, response)
	}
}

func writeJSON(w http.ResponseWriter, r response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(r.StatusCode)
	if r.StatusCode >= http.StatusBadRequest {
		json.NewEncoder(w).Encode(struct {
			Message string `json:"message"`
		}{r.Message})
		return
	}
	if r.Response != nil {
		json.NewEncoder(w).Encode(r.Response)
	}
}

func badRequest(format string, a ...interface{}) response {
	return errorStatus(http.StatusBadRequest, format, a...)
}

func serverError(format string, a ...interface{}) response {
	return errorStatus(http.StatusInternalServerError, format, a...)
}

func errorStatus(code int, format string, a ...interface{}) response {
	return response{StatusCode: code, Message: fmt.Sprintf(format, a...)}
}

// errorResponse maps the models error taxonomy onto HTTP statuses. Errors
// outside the taxonomy are treated as internal and reported to Sentry by the
// wrapper.
func errorResponse(err error) response {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrMissingField), errors.Is(err, models.ErrInvalidRole):
		code = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrUpstream):
		code = http.StatusBadGateway
	}
	return response{StatusCode: code, Message: err.Error()}
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

// RegisterHandlers binds the API routes and wraps them with the service
// middleware. The scan route is additionally throttled: probes block for up
// to the probe timeout and are easy to abuse.
func (api *API) RegisterHandlers() http.Handler {
	r := chi.NewRouter()
	r.NotFound(api.wrapper(func(*http.Request) response {
		return errorStatus(http.StatusNotFound, "Not found")
	}))
	r.MethodNotAllowed(api.wrapper(func(*http.Request) response {
		return errorStatus(http.StatusMethodNotAllowed, "Method not allowed")
	}))

	r.Get("/ping", pingHandler)
	r.Get("/websites", api.wrapper(api.listWebsites))
	r.Post("/websites", api.wrapper(api.createWebsite))
	r.Get("/websites/{id}", api.wrapper(api.getWebsite))
	r.Put("/websites/{id}", api.wrapper(api.updateWebsite))
	r.Delete("/websites/{id}", api.wrapper(api.deleteWebsite))
	r.With(throttle(time.Hour, 120)).Post("/scan", api.wrapper(api.scan))
	r.Post("/organizations", api.wrapper(api.createOrganization))
	r.Get("/organizations/{id}/members", api.wrapper(api.listMembers))
	r.Get("/organizations/{id}/members/{userId}", api.wrapper(api.getMemberRole))
	r.Post("/users/invite", api.wrapper(api.inviteMember))
	r.Put("/users/{userId}/role", api.wrapper(api.updateRole))
	r.Get("/users/{userId}/organizations", api.wrapper(api.userOrganizations))
	return middleware(r)
}
