package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) HandleGetInstance(w http.ResponseWriter, r *http.Request) {
	if s.fixture.MetaData == nil {
		respondWithError(w, http.StatusNotFound, "no metadata")
		return
	}
	respondOK(w, s.fixture.MetaData)
}

func (s *Server) HandleGetAuthentication(w http.ResponseWriter, r *http.Request) {
	auth := s.fixture.Authentication
	if auth == nil {
		auth = map[string]any{"name": "anonymous", "type": "FULLY_ANONYMOUS"}
	}
	respondOK(w, auth)
}

func (s *Server) HandleGetTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["table"]
	if s.fixture.MetaData != nil {
		if table, ok := s.fixture.MetaData.Tables[name]; ok {
			respondOK(w, map[string]any{"table": table})
			return
		}
	}
	respondWithError(w, http.StatusNotFound, "Table "+name+" was not found.")
}

func (s *Server) HandleGetProcess(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["process"]
	if s.fixture.MetaData != nil {
		if process, ok := s.fixture.MetaData.Processes[name]; ok {
			respondOK(w, map[string]any{"process": process})
			return
		}
	}
	respondWithError(w, http.StatusNotFound, "Process "+name+" was not found.")
}
