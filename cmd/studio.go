package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/generator"
	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/store"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Serve an interactive relationship graph over HTTP",
	Long: `Launch relgraph Studio, an HTTP API over one graph session.

Clients pick a root object, toggle nodes to expand or collapse them, move
nodes and export the current graph:

  GET  /api/graph                  current graph state
  POST /api/graph                  {"root": "Quote", "depth": 2}
  POST /api/nodes/{id}/toggle      expand or collapse a node
  POST /api/nodes/{id}/position    {"x": 10, "y": 20}
  POST /api/nodes/{id}/select      select a node
  POST /api/edges/{id}/select      select an edge
  PUT  /api/viewport               {"x": 0, "y": 0, "zoom": 1}
  POST /api/reset                  clear the graph and start a new session
  GET  /api/objects                describable objects
  GET  /api/export/{format}        mermaid, plantuml, graphviz, json, d3 or yaml
  GET  /metrics                    Prometheus metrics
  GET  /health                     liveness

The server listens on http://localhost:8080 by default.`,
	Run: func(cmd *cobra.Command, args []string) {
		port := viper.GetString("studio.port")
		if port == "" {
			port = "8080"
		}

		source, err := describerFromConfig()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		s := store.New(source, store.WithDepth(viper.GetInt("depth")))
		server := NewStudioServer(s)

		fmt.Printf("🚀 Starting relgraph Studio on http://localhost:%s\n", port)
		fmt.Println("Press Ctrl+C to stop the server")

		if err := http.ListenAndServe(":"+port, server); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	studioCmd.Flags().String("port", "8080", "Port to run the web server on")
	viper.BindPFlag("studio.port", studioCmd.Flags().Lookup("port"))
}

// StudioServer serves one graph session over HTTP
type StudioServer struct {
	store *store.Store
	mux   *http.ServeMux
}

// NewStudioServer wires the API routes around s
func NewStudioServer(s *store.Store) *StudioServer {
	server := &StudioServer{store: s, mux: http.NewServeMux()}

	server.mux.HandleFunc("GET /api/graph", server.handleGraph)
	server.mux.HandleFunc("POST /api/graph", server.handleBuild)
	server.mux.HandleFunc("POST /api/nodes/{id}/toggle", server.handleToggle)
	server.mux.HandleFunc("POST /api/nodes/{id}/position", server.handleMove)
	server.mux.HandleFunc("POST /api/nodes/{id}/select", server.handleSelectNode)
	server.mux.HandleFunc("POST /api/edges/{id}/select", server.handleSelectEdge)
	server.mux.HandleFunc("PUT /api/viewport", server.handleViewport)
	server.mux.HandleFunc("POST /api/reset", server.handleReset)
	server.mux.HandleFunc("GET /api/objects", server.handleObjects)
	server.mux.HandleFunc("GET /api/export/{format}", server.handleExport)
	server.mux.Handle("GET /metrics", promhttp.Handler())
	server.mux.HandleFunc("GET /health", server.handleHealth)

	return server
}

func (s *StudioServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// BuildRequest selects a new root object. A non-zero Depth becomes the
// session depth only if the build returns a graph.
type BuildRequest struct {
	Root  string `json:"root"`
	Depth int    `json:"depth,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *StudioServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.Root == "" {
		writeError(w, r, http.StatusBadRequest, "root is required")
		return
	}
	var err error
	if req.Depth != 0 {
		err = s.store.BuildAt(r.Context(), req.Root, req.Depth)
	} else {
		err = s.store.SetRoot(r.Context(), req.Root)
	}
	switch {
	case errors.Is(err, store.ErrInvalidDepth):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrStaleResult):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil && len(s.store.Graph().Nodes) == 0:
		writeError(w, r, statusForDescribe(err), err.Error())
		return
	}

	// A partial build still returns the graph; the failure is in state.error.
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Graph().Node(id); !ok {
		writeError(w, r, http.StatusNotFound, "Node not found: "+id)
		return
	}

	if err := s.store.Toggle(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrStaleResult) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeError(w, r, statusForDescribe(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleMove(w http.ResponseWriter, r *http.Request) {
	var pos graph.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	id := r.PathValue("id")
	if !s.store.MoveNode(id, pos) {
		writeError(w, r, http.StatusNotFound, "Node not found: "+id)
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleSelectNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.SelectNode(id) {
		writeError(w, r, http.StatusNotFound, "Node not found: "+id)
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleSelectEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.SelectEdge(id) {
		writeError(w, r, http.StatusNotFound, "Edge not found: "+id)
		return
	}
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleViewport(w http.ResponseWriter, r *http.Request) {
	var v store.Viewport
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	s.store.SetViewport(v)
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	writeJSON(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *StudioServer) handleObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := s.store.ListObjects(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "Failed to list objects: "+err.Error())
		return
	}
	response := map[string]interface{}{
		"objects": objects,
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (s *StudioServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := generator.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	content, err := generator.Generate(format, s.store.Graph())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	switch format {
	case generator.JSON, generator.D3:
		w.Header().Set("Content-Type", "application/json")
	case generator.YAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", generator.DefaultFilename(format)))
	w.Write(content)
}

func (s *StudioServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForDescribe maps a describe failure to an HTTP status
func statusForDescribe(err error) int {
	switch {
	case errors.Is(err, introspect.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, introspect.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}
