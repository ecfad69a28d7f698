// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"calorie-counter/internal/config"
	"calorie-counter/internal/dailylog"
	"calorie-counter/internal/nutrition"
	"calorie-counter/internal/storage"
	"calorie-counter/internal/widget"
)

const (
	serverName    = "calorie-counter"
	serverVersion = "1.0.0"
)

type CalorieServer struct {
	httpServer *http.Server
	storage    storage.KV
	store      *dailylog.Store
	widget     *widget.Controller
	info       protocol.Implementation
	config     *config.Config
}

// New builds a server around an opened KV, its loaded store and the widget
// controller driving it. Stop closes kv.
func New(cfg *config.Config, kv storage.KV, store *dailylog.Store, ctrl *widget.Controller) *CalorieServer {
	s := &CalorieServer{
		storage: kv,
		store:   store,
		widget:  ctrl,
		info: protocol.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		config: cfg,
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.Handler(),
	}

	return s
}

// Handler returns the routed HTTP handler.
func (s *CalorieServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /query", s.handlePageQuery)
	mux.HandleFunc("POST /remove", s.handlePageRemove)

	mux.HandleFunc("GET /api/log", s.handleGetLog)
	mux.HandleFunc("POST /api/log", s.handleAddLog)
	mux.HandleFunc("DELETE /api/log", s.handleDeleteLog)
	mux.HandleFunc("GET /api/log/total", s.handleTotal)

	mux.HandleFunc("/mcp", s.handleMCP)

	return mux
}

func (s *CalorieServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"server": s.info,
			"tools":  toolNames(),
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools()[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *CalorieServer) Start(ctx context.Context) error {
	log.Printf("Starting calorie counter on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *CalorieServer) Stop(ctx context.Context) error {
	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}

func (s *CalorieServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, nutrition.ErrEmptyQuery), errors.Is(err, errInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, dailylog.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, widget.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, nutrition.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
