package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/pagegraph/pkg/buildinfo"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	pkgio "github.com/matzehuels/pagegraph/pkg/io"
	"github.com/matzehuels/pagegraph/pkg/query"
)

type graphSummary struct {
	ID         uuid.UUID         `json:"id"`
	Nodes      int               `json:"nodes"`
	Edges      int               `json:"edges"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Descriptor *graph.Descriptor `json:"descriptor,omitempty"`
}

func summarize(h uuid.UUID, e entry) graphSummary {
	s := graphSummary{ID: h, Nodes: e.graph.NodeCount(), Edges: e.graph.EdgeCount(), LoadedAt: e.loadedAt}
	if d, ok := e.graph.Descriptor(); ok {
		s.Descriptor = &d
	}
	return s
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "graphs": s.store.Len(), "build": buildinfo.Get()})
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	g, err := pkgio.ReadFromReader(body, pkgio.WithLogger(s.logger))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Code:    errors.ErrCodeInvalidInput,
				Message: "recording exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return
		}
		writeError(w, err)
		return
	}
	h := s.store.Add(g)
	s.logger.Debug("stored graph", "id", h, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	e, _ := s.store.Get(h)
	writeJSON(w, http.StatusCreated, summarize(h, e))
}

// loaded resolves the {graphID} parameter, writing a 404 when it is unknown.
func (s *Server) loaded(w http.ResponseWriter, r *http.Request) (uuid.UUID, *graph.Graph, bool) {
	raw := chi.URLParam(r, "graphID")
	h, err := uuid.Parse(raw)
	if err == nil {
		if e, ok := s.store.Get(h); ok {
			return h, e.graph, true
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody{Code: errors.ErrCodeNotFound, Message: "no graph " + raw})
	return uuid.Nil, nil, false
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	h, _, ok := s.loaded(w, r)
	if !ok {
		return
	}
	e, _ := s.store.Get(h)
	writeJSON(w, http.StatusOK, summarize(h, e))
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	h, _, ok := s.loaded(w, r)
	if !ok {
		return
	}
	s.store.Delete(h)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	nid := chi.URLParam(r, "nodeID")
	n, found := g.Node(graph.NodeID(nid))
	if !found {
		writeError(w, &errors.NodeNotFoundError{ID: nid})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) getNeighbors(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	dir := graph.Outgoing
	if raw := r.URL.Query().Get("direction"); raw != "" {
		d, valid := graph.ParseDirection(raw)
		if !valid {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "direction must be out, in or both, got %q", raw))
			return
		}
		dir = d
	}
	ids, err := g.Neighbors(graph.NodeID(chi.URLParam(r, "nodeID")), dir)
	if err != nil {
		writeError(w, err)
		return
	}
	nodes := make([]graph.Node, 0, len(ids))
	for _, nid := range ids {
		n, _ := g.Node(nid)
		nodes = append(nodes, n)
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) getEdge(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	eid := chi.URLParam(r, "edgeID")
	e, found := g.Edge(graph.EdgeID(eid))
	if !found {
		writeError(w, &errors.EdgeNotFoundError{ID: eid})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getDownstream(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	reqs, err := query.DownstreamRequests(g, graph.EdgeID(chi.URLParam(r, "edgeID")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	rid, err := strconv.ParseUint(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request id must be a number"))
		return
	}
	var fid id.FrameID
	if raw := r.URL.Query().Get("frame"); raw != "" {
		if fid, err = id.ParseFrameID(raw); err != nil {
			writeError(w, err)
			return
		}
	}
	info, err := query.LookupRequest(g, rid, fid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) {
	_, g, ok := s.loaded(w, r)
	if !ok {
		return
	}
	var args query.Args
	if params := r.URL.Query(); len(params) > 0 {
		args = query.Args{}
		for k := range params {
			args[k] = params.Get(k)
		}
	}
	t, err := query.Run(r.Context(), g, chi.URLParam(r, "name"), args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeEdgeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeMalformedDocument, errors.ErrCodeDecode, errors.ErrCodeUnknownKind,
		errors.ErrCodeInvalidAttribute, errors.ErrCodeDuplicateNode, errors.ErrCodeDuplicateEdge,
		errors.ErrCodeDanglingEdge, errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidQuery, errors.ErrCodeInvalidID, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}
