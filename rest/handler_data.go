package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kingsrook/qqq-client/model"
)

func (s *Server) tableRecords(w http.ResponseWriter, table string) bool {
	if s.fixture.MetaData != nil && len(s.fixture.MetaData.Tables) > 0 {
		if _, ok := s.fixture.MetaData.Tables[table]; !ok {
			respondWithError(w, http.StatusNotFound, "Table "+table+" was not found.")
			return false
		}
	}
	return true
}

func (s *Server) toRecord(table string, values map[string]any) map[string]any {
	return map[string]any{"tableName": table, "values": copyMap(values)}
}

func parseFilter(r *http.Request) (*model.QueryFilter, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	raw := r.PostForm.Get("filter")
	if raw == "" {
		return nil, nil
	}
	var filter model.QueryFilter
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return &filter, nil
}

// matching applies the filter's criteria, all of which must hold, then skip and limit.
func matching(rows []map[string]any, filter *model.QueryFilter) []map[string]any {
	var out []map[string]any
	for _, row := range rows {
		if filter == nil || matchesAll(row, filter.Criteria) {
			out = append(out, row)
		}
	}
	if filter == nil {
		return out
	}
	skip, limit := 0, -1
	if filter.Skip != nil {
		skip = *filter.Skip
	}
	if filter.Limit != nil {
		limit = *filter.Limit
	}
	return slicePage(out, skip, limit)
}

func matchesAll(row map[string]any, criteria []*model.FilterCriteria) bool {
	for _, c := range criteria {
		if !matches(row[c.FieldName], c) {
			return false
		}
	}
	return true
}

func matches(v any, c *model.FilterCriteria) bool {
	blank := v == nil || fmt.Sprint(v) == ""
	in := false
	for _, want := range c.Values {
		if fmt.Sprint(want) == fmt.Sprint(v) {
			in = true
		}
	}
	switch c.Operator {
	case model.EQUALS, model.IN:
		return !blank && in
	case model.NOT_EQUALS, model.NOT_IN:
		return !in
	case model.IS_BLANK:
		return blank
	case model.IS_NOT_BLANK:
		return !blank
	}
	// the mock ignores operators it does not know
	return true
}

func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !s.tableRecords(w, table) {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	records := make([]map[string]any, 0)
	for _, row := range matching(s.records[table], filter) {
		records = append(records, s.toRecord(table, row))
	}
	s.mu.Unlock()
	respondOK(w, map[string]any{"records": records})
}

func (s *Server) HandleCount(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !s.tableRecords(w, table) {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter != nil {
		filter.Skip, filter.Limit = nil, nil
	}
	s.mu.Lock()
	count := len(matching(s.records[table], filter))
	s.mu.Unlock()
	respondOK(w, map[string]any{"count": count})
}

func (s *Server) find(table string, primaryKey string) int {
	field := s.fixture.primaryKeyField(table)
	for i, row := range s.records[table] {
		if fmt.Sprint(row[field]) == primaryKey {
			return i
		}
	}
	return -1
}

func (s *Server) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.tableRecords(w, vars["table"]) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(vars["table"], vars["primaryKey"])
	if i < 0 {
		respondWithError(w, http.StatusNotFound, "Record "+vars["primaryKey"]+" was not found.")
		return
	}
	respondOK(w, s.toRecord(vars["table"], s.records[vars["table"]][i]))
}

func (s *Server) HandleCreate(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]
	if !s.tableRecords(w, table) {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row := formValues(r)
	field := s.fixture.primaryKeyField(table)
	if _, ok := row[field]; !ok {
		row[field] = s.nextId(table)
	}
	s.records[table] = append(s.records[table], row)
	respondOK(w, s.toRecord(table, row))
}

func (s *Server) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.tableRecords(w, vars["table"]) {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(vars["table"], vars["primaryKey"])
	if i < 0 {
		respondWithError(w, http.StatusNotFound, "Record "+vars["primaryKey"]+" was not found.")
		return
	}
	row := s.records[vars["table"]][i]
	for k, v := range formValues(r) {
		row[k] = v
	}
	respondOK(w, s.toRecord(vars["table"], row))
}

func (s *Server) HandleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.tableRecords(w, vars["table"]) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	if i := s.find(vars["table"], vars["primaryKey"]); i >= 0 {
		rows := s.records[vars["table"]]
		s.records[vars["table"]] = append(rows[:i:i], rows[i+1:]...)
		deleted = 1
	}
	respondOK(w, map[string]any{"deletedRecordCount": deleted})
}

// nextId is one more than the largest numeric primary key of table.
func (s *Server) nextId(table string) int {
	field := s.fixture.primaryKeyField(table)
	highest := 0
	for _, row := range s.records[table] {
		if n, err := strconv.Atoi(fmt.Sprint(row[field])); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func formValues(r *http.Request) map[string]any {
	row := make(map[string]any, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) == 1 {
			row[k] = vs[0]
		} else {
			list := make([]any, 0, len(vs))
			for _, v := range vs {
				list = append(list, v)
			}
			row[k] = list
		}
	}
	return row
}
