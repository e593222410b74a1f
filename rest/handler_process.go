package rest

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/logger"
)

func (s *Server) script(w http.ResponseWriter, name string) (*ProcessScript, bool) {
	script, ok := s.fixture.Processes[name]
	if !ok {
		respondWithError(w, http.StatusNotFound, "Process "+name+" was not found.")
		return nil, false
	}
	return script, true
}

// respondWithPayload sends a scripted process answer; answers carrying an error go out
// as a server error like the real backend does.
func respondWithPayload(w http.ResponseWriter, payload map[string]any) {
	if _, ok := payload["error"]; ok {
		respondWithJSON(w, http.StatusInternalServerError, payload)
		return
	}
	respondOK(w, payload)
}

func (s *Server) HandleProcessInit(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["process"]
	script, ok := s.script(w, name)
	if !ok {
		return
	}
	payload := copyMap(script.Init)
	if _, ok := payload["processUUID"]; !ok {
		payload["processUUID"] = uuid.New().String()
	}
	logger.Debug("mock process init", zap.String("process", name), zap.Any("processUUID", payload["processUUID"]))
	respondWithPayload(w, payload)
}

func (s *Server) HandleProcessStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	script, ok := s.script(w, vars["process"])
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	step, ok := script.Steps[vars["step"]]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown step "+vars["step"])
		return
	}
	payload := copyMap(step)
	if _, ok := payload["processUUID"]; !ok {
		payload["processUUID"] = vars["processUUID"]
	}
	respondWithPayload(w, payload)
}

func (s *Server) HandleProcessStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	script, ok := s.script(w, vars["process"])
	if !ok {
		return
	}
	answers := script.Status[vars["jobUUID"]]
	if len(answers) == 0 {
		respondWithError(w, http.StatusNotFound, "Job "+vars["jobUUID"]+" was not found.")
		return
	}

	key := vars["processUUID"] + ":" + vars["jobUUID"]
	s.mu.Lock()
	i := s.polls[key]
	if i < len(answers)-1 {
		s.polls[key] = i + 1
	}
	s.mu.Unlock()

	respondWithPayload(w, copyMap(answers[i]))
}

func (s *Server) HandleProcessRecords(w http.ResponseWriter, r *http.Request) {
	script, ok := s.script(w, mux.Vars(r)["process"])
	if !ok {
		return
	}
	skip, limit, err := page(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	records := make([]map[string]any, 0)
	for _, values := range slicePage(script.Records, skip, limit) {
		records = append(records, map[string]any{"values": values})
	}
	respondOK(w, map[string]any{"records": records})
}

func page(r *http.Request) (int, int, error) {
	skip, limit := 0, -1
	var err error
	if v := r.URL.Query().Get("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	return skip, limit, nil
}

func slicePage[T any](items []T, skip int, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
