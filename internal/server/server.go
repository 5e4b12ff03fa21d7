package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"FrontDb/internal/interpreter"
	l "FrontDb/internal/logger"
)

type execRequest struct {
	Commands string `json:"commands"`
}

type execResponse struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Quit    bool   `json:"quit"`
}

// Server runs command batches posted over HTTP through one shared session.
// Requests are serialized so the session never sees two batches at once.
type Server struct {
	mu      sync.Mutex
	session *interpreter.Session
	logger  *l.Logger
}

func New(session *interpreter.Session, logger *l.Logger) *Server {
	return &Server{session: session, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health & readiness
	mux.HandleFunc("/health", s.health)

	// Execution
	// POST /exec -> run a batch of commands, return their output
	mux.HandleFunc("/exec", s.execHandler)

	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	s.logger.Info("listening on %s", addr)
	return server.ListenAndServe()
}

// health returns 200 OK for liveness checks
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// execHandler feeds the posted commands to the session. A fatal session
// error answers 500 along with the output produced up to that point.
func (s *Server) execHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.logger.Error("Invalid method used: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req execRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("Failed to decode request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var out bytes.Buffer

	s.mu.Lock()
	quit, err := s.session.Exec(strings.NewReader(req.Commands), &out)
	s.mu.Unlock()

	status := http.StatusOK
	if err != nil {
		s.logger.Error("Failed to execute commands: %v", err)
		status = http.StatusInternalServerError
	}

	response := execResponse{Success: err == nil, Output: out.String(), Quit: quit}
	responseBytes, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("Failed to marshal response: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(responseBytes)
}
