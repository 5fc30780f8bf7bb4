package server

import (
	"net/http"
	"strconv"

	"github.com/dentflow/dentflow/pkg/flow"
	"github.com/dentflow/dentflow/pkg/flow/canvas"
	"github.com/dentflow/dentflow/pkg/flow/render"
	"github.com/dentflow/dentflow/pkg/question"
)

// buildScene loads the questionnaire and runs the full scene pipeline.
// width and height are the client viewport; zero means no viewport and
// no centering.
func (s *Server) buildScene(r *http.Request) (canvas.Scene, error) {
	records, err := s.questions.List(r.Context())
	if err != nil {
		return canvas.Scene{}, err
	}

	c := canvas.New(loggerFromContext(r.Context()))
	c.SetQuestions(question.DecodeAll(records), s.rootID)
	if w, h := sizeParams(r); w > 0 || h > 0 {
		c.Resize(w, h)
	}
	return c.Scene(), nil
}

func sizeParams(r *http.Request) (width, height float64) {
	width, _ = strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	height, _ = strconv.ParseFloat(r.URL.Query().Get("height"), 64)
	return width, height
}

// handleFlowScene returns the computed scene as JSON.
func (s *Server) handleFlowScene(w http.ResponseWriter, r *http.Request) {
	scene, err := s.buildScene(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// handleFlowSVG returns the computed scene rendered as SVG. With
// ?markers=true the add-child markers are drawn on each connection.
func (s *Server) handleFlowSVG(w http.ResponseWriter, r *http.Request) {
	scene, err := s.buildScene(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var opts []render.SVGOption
	if r.URL.Query().Get("markers") == "true" {
		opts = append(opts, render.WithMarkers())
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(render.RenderSVG(scene, opts...))
}

// handleFlowDOT returns the questionnaire graph in Graphviz DOT form.
func (s *Server) handleFlowDOT(w http.ResponseWriter, r *http.Request) {
	records, err := s.questions.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	g := flow.Build(question.DecodeAll(records), s.rootID)
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.ToDOT(g)))
}
