package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/steelcutops/droidcheck/droidcheck/devicegroup"
	"github.com/steelcutops/droidcheck/logger"
)

// Server exposes a read-only view of a DeviceGroup's users.
type Server struct {
	Group *devicegroup.DeviceGroup
	Log   logger.Logger
}

func (s *Server) log() logger.Logger {
	if s.Log == nil {
		return logger.Default()
	}
	return s.Log
}

func NewRouter(group *devicegroup.DeviceGroup, log logger.Logger) *mux.Router {
	s := &Server{Group: group, Log: log}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/devices", s.ListDevicesHandler).Methods("GET")
	r.HandleFunc("/devices/{serial}/users", s.ListUsersHandler).Methods("GET")
	r.HandleFunc("/devices/{serial}/users/{id}", s.GetUserHandler).Methods("GET")
	r.HandleFunc("/devices/{serial}/usertypes", s.ListUserTypesHandler).Methods("GET")
	return r
}
