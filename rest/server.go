package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/logger"
)

// Server is a scripted stand-in for a qqq backend.
type Server struct {
	http.Server
	Port    int
	fixture *Fixture

	mu      sync.Mutex
	polls   map[string]int
	records map[string][]map[string]any
}

func NewServer(httpPort int, fixture *Fixture) (*Server, error) {
	if fixture == nil {
		return nil, fmt.Errorf("no fixture")
	}
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		Port:    httpPort,
		fixture: fixture,
		polls:   make(map[string]int),
		records: make(map[string][]map[string]any),
	}
	for table, rows := range fixture.Records {
		copied := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			copied = append(copied, copyMap(row))
		}
		s.records[table] = copied
	}

	router := mux.NewRouter()
	router.HandleFunc("/metaData", s.HandleGetInstance).Methods(http.MethodGet)
	router.HandleFunc("/metaData/authentication", s.HandleGetAuthentication).Methods(http.MethodGet)
	router.HandleFunc("/metaData/table/{table}", s.HandleGetTable).Methods(http.MethodGet)
	router.HandleFunc("/metaData/process/{process}", s.HandleGetProcess).Methods(http.MethodGet)

	router.HandleFunc("/processes/{process}/init", s.HandleProcessInit).Methods(http.MethodPost)
	router.HandleFunc("/processes/{process}/{processUUID}/step/{step}", s.HandleProcessStep).Methods(http.MethodPost)
	router.HandleFunc("/processes/{process}/{processUUID}/status/{jobUUID}", s.HandleProcessStatus).Methods(http.MethodGet)
	router.HandleFunc("/processes/{process}/{processUUID}/records", s.HandleProcessRecords).Methods(http.MethodGet)

	router.HandleFunc("/data/{table}/query", s.HandleQuery).Methods(http.MethodPost)
	router.HandleFunc("/data/{table}/count", s.HandleCount).Methods(http.MethodPost)
	router.HandleFunc("/data/{table}", s.HandleCreate).Methods(http.MethodPost)
	router.HandleFunc("/data/{table}/{primaryKey}", s.HandleGetRecord).Methods(http.MethodGet)
	router.HandleFunc("/data/{table}/{primaryKey}", s.HandleUpdate).Methods(http.MethodPatch)
	router.HandleFunc("/data/{table}/{primaryKey}", s.HandleDelete).Methods(http.MethodDelete)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting mock backend on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping mock backend")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down mock backend", zap.Error(err))
	}
	return err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("mock backend request", zap.String("method", r.Method), zap.String("uri", r.RequestURI))
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondOK(w http.ResponseWriter, payload any) {
	respondWithJSON(w, http.StatusOK, payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
