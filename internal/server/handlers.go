package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/family/transform"
	"github.com/matzehuels/familygraph/pkg/pipeline"
	"github.com/matzehuels/familygraph/pkg/render/sink"
	"github.com/matzehuels/familygraph/pkg/settings"
	"github.com/matzehuels/familygraph/pkg/source"
)

const maxBodyBytes = 1 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

// GraphResponse is the body of GET /api/graph.
type GraphResponse struct {
	Graph       family.Graph        `json:"graph"`
	Diagnostics []family.Diagnostic `json:"diagnostics"`
	Inferred    int                 `json:"inferred"`
	Generation  uint64              `json:"generation"`
	LoadedAt    time.Time           `json:"loaded_at"`
	Stale       bool                `json:"stale"`
	Notice      string              `json:"notice,omitempty"`
}

// AddMemberRequest is the body of POST /api/members.
type AddMemberRequest struct {
	Profile family.Profile `json:"profile"`
	Hint    *source.Hint   `json:"hint,omitempty"`
}

// DragRequest is the body of POST /api/nodes/{nodeID}/drag.
type DragRequest struct {
	Phase string  `json:"phase"` // "start", "move", "end"
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g, res := transform.WithInferred(s.graph)
	resp := GraphResponse{
		Graph:       g,
		Diagnostics: append([]family.Diagnostic{}, s.diags...),
		Inferred:    res.Inferred,
		Generation:  s.scene.Generation(),
		LoadedAt:    s.loadedAt,
	}
	_, fetchedAt, _ := s.cfg.Feed.Last()
	if s.notice != nil && s.notice.Time.After(fetchedAt) {
		resp.Stale = true
		resp.Notice = errors.UserMessage(s.notice.Err)
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	frame, palette, ok := s.scene.Frame()
	if !ok {
		respondError(w, errors.New(errors.ErrCodeNotFound, "no frame rendered yet"))
		return
	}
	respondJSON(w, http.StatusOK, pipeline.FrameDocument{Frame: frame, Palette: palette})
}

func (s *Server) getFrameSVG(w http.ResponseWriter, r *http.Request) {
	frame, palette, ok := s.scene.Frame()
	if !ok {
		respondError(w, errors.New(errors.ErrCodeNotFound, "no frame rendered yet"))
		return
	}
	style, err := sink.ParseFrameStyle(r.URL.Query().Get("frame"))
	if err != nil {
		respondError(w, err)
		return
	}
	var opts []sink.SVGOption
	opts = append(opts, sink.WithTitle(s.title(r)), sink.WithFrame(style))
	if r.URL.Query().Get("avatars") == "false" {
		opts = append(opts, sink.WithoutAvatars())
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatSVG])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(sink.RenderSVG(frame, palette, opts...))
}

// export runs the headless pipeline on the current snapshot with the current
// view settings.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	q := r.URL.Query()

	opts := pipeline.Options{
		VizType:   q.Get("viz"),
		Settings:  s.scene.Settings(),
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Seed:      s.cfg.Seed,
		Params:    s.cfg.Params,
		Formats:   []string{format},
		Title:     s.title(r),
		NoAvatars: q.Get("avatars") == "false",
		Detailed:  q.Get("detailed") == "true",
	}
	style, err := sink.ParseFrameStyle(q.Get("frame"))
	if err != nil {
		respondError(w, err)
		return
	}
	opts.Frame = style
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}

	s.mu.RLock()
	snap := s.snap.Clone()
	s.mu.RUnlock()

	result, err := s.cfg.Runner.Execute(r.Context(), snap, opts)
	if err != nil {
		s.cfg.Logger.Warn("export failed", "format", format, "err", err)
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache-Layout", strconv.FormatBool(result.CacheInfo.LayoutHit))
	w.Header().Set("X-Cache-Render", strconv.FormatBool(result.CacheInfo.RenderHit))
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) title(r *http.Request) string {
	if t := r.URL.Query().Get("title"); t != "" && errors.ValidateTitle(t) == nil {
		return t
	}
	return s.cfg.Title
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	profiles := append([]family.Profile{}, s.snap.Profiles...)
	s.mu.RUnlock()
	respondJSON(w, http.StatusOK, profiles)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Hint != nil {
		if err := errors.ValidateNodeID(req.Hint.TargetID); err != nil {
			respondError(w, err)
			return
		}
	}

	p, err := s.cfg.Feed.Source().AddProfile(r.Context(), req.Profile, req.Hint)
	if err != nil {
		s.cfg.Logger.Warn("add member failed", "name", req.Profile.Name, "err", err)
		respondError(w, err)
		return
	}
	s.cfg.Logger.Info("member added", "id", p.ID, "name", p.Name, "role", p.Role)
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) drag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	if err := errors.ValidateNodeID(id); err != nil {
		respondError(w, err)
		return
	}
	var req DragRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	nid := family.NodeID(id)
	var err error
	switch req.Phase {
	case "start":
		err = s.scene.DragStart(nid)
	case "move":
		err = s.scene.DragMove(nid, req.X, req.Y)
	case "end":
		err = s.scene.DragEnd(nid)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "invalid drag phase %q (allowed: start, move, end)", req.Phase)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.cfg.Store.Get())
}

// putSettings replaces the whole settings value. Missing keys take defaults.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	next := settings.Settings{}
	if err := decodeBody(w, r, &next); err != nil {
		respondError(w, err)
		return
	}
	if err := next.Validate(); err != nil {
		respondError(w, err)
		return
	}
	next = next.Normalized()
	s.cfg.Store.Replace(next)
	respondJSON(w, http.StatusOK, next)
}

// patchSettings applies a map of key/value pairs on top of the current value.
func (s *Server) patchSettings(w http.ResponseWriter, r *http.Request) {
	var kv map[string]string
	if err := decodeBody(w, r, &kv); err != nil {
		respondError(w, err)
		return
	}
	next, err := s.cfg.Store.Apply(func(cur settings.Settings) (settings.Settings, error) {
		var err error
		for k, v := range kv {
			if cur, err = cur.Parse(k, v); err != nil {
				return cur, err
			}
		}
		return cur, nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondJSON(w, errors.HTTPStatus(err), map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}
