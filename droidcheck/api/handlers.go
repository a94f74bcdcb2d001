package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/steelcutops/droidcheck/droidcheck/usermanager"
)

type deviceSummary struct {
	Key        string `json:"key"`
	Serial     string `json:"serial"`
	Host       string `json:"host"`
	SDKVersion int    `json:"sdk"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ListDevicesHandler returns every device in the group.
func (s *Server) ListDevicesHandler(w http.ResponseWriter, r *http.Request) {
	devices := s.Group.List()
	summaries := make([]deviceSummary, 0, len(devices))
	for _, d := range devices {
		summaries = append(summaries, deviceSummary{
			Key:        d.Key(),
			Serial:     d.Serial,
			Host:       d.Hostname,
			SDKVersion: d.SDKVersion,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// snapshot resolves the {serial} route variable and takes a fresh snapshot.
// It writes the error response itself and reports whether to continue.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*usermanager.Snapshot, bool) {
	serial := mux.Vars(r)["serial"]
	d, ok := s.Group.Get(serial)
	if !ok {
		writeError(w, http.StatusNotFound, "device not found: "+serial)
		return nil, false
	}

	snapshot, err := d.UserManager.All(r.Context())
	if err != nil {
		s.log().Warn("Failed to read users", "device", d.Key(), "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return nil, false
	}
	return snapshot, true
}

// ListUsersHandler returns a fresh snapshot of the device's users.
func (s *Server) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// GetUserHandler returns a single user by ID.
func (s *Server) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["id"]
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id: "+rawID)
		return
	}

	snapshot, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	user, found := snapshot.User(id)
	if !found {
		writeError(w, http.StatusNotFound, "user not found: "+rawID)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUserTypesHandler returns the user types reported by the device, sorted
// by name. Devices below SDK 30 report none.
func (s *Server) ListUserTypesHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	userTypes := snapshot.UserTypes()
	names := make([]string, 0, len(userTypes))
	for name := range userTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	types := make([]usermanager.UserType, 0, len(names))
	for _, name := range names {
		types = append(types, userTypes[name])
	}
	writeJSON(w, http.StatusOK, types)
}
