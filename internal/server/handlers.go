package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ridasset/pkg/buildinfo"
	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/pipeline"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// document is a manifest embedded in a request: either a JSON object, or a
// string holding JSON or YAML text.
type document json.RawMessage

func (d *document) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

func (d document) bytes() ([]byte, error) {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		return []byte(text), nil
	}
	return trimmed, nil
}

type resolveRequest struct {
	Manifest   document           `json:"manifest"`
	Components []componentRequest `json:"components,omitempty"`
	RID        string             `json:"rid,omitempty"`
	UnknownRID bool               `json:"unknown_rid,omitempty"`
	NoGraph    bool               `json:"no_graph,omitempty"`
	Refresh    bool               `json:"refresh,omitempty"`
}

type componentRequest struct {
	Name     string   `json:"name"`
	Manifest document `json:"manifest"`
}

type graphRequest struct {
	Manifest  document `json:"manifest"`
	Format    string   `json:"format,omitempty"`
	Builtin   bool     `json:"builtin,omitempty"`
	Highlight string   `json:"highlight,omitempty"`
}

type chainResponse struct {
	RID   rid.RID   `json:"rid"`
	Chain rid.Chain `json:"chain"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       buildinfo.Version,
		UptimeSeconds: int64(time.Since(s.start).Seconds()),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Detector = s.detector

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.ResultHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

func (req resolveRequest) options() (pipeline.Options, error) {
	data, err := req.Manifest.bytes()
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest")
	}
	opts := pipeline.Options{
		Manifest:   pipeline.Input{Name: "manifest", Data: data},
		RID:        req.RID,
		UnknownRID: req.UnknownRID,
		NoGraph:    req.NoGraph,
		Refresh:    req.Refresh,
	}
	for i, c := range req.Components {
		data, err := c.Manifest.bytes()
		if err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "component %d", i)
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("component[%d]", i)
		}
		opts.Components = append(opts.Components, pipeline.Input{Name: name, Data: data})
	}
	return opts, nil
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := req.Manifest.bytes()
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest"))
		return
	}
	if len(data) == 0 && !req.Builtin {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "manifest is required unless builtin is set"))
		return
	}

	opts := pipeline.GraphOptions{Format: req.Format, Builtin: req.Builtin, Highlight: req.Highlight}
	out, err := s.runner.RenderGraph(r.Context(), pipeline.Input{Name: "manifest", Data: data}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Format == pipeline.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "rid")
	if err := errors.ValidateRID(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	target := rid.RID(name)
	if !rid.DefaultFallbacks.Has(target) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no built-in chain for %q", name))
		return
	}
	writeJSON(w, http.StatusOK, chainResponse{RID: target, Chain: rid.DefaultChain(target)})
}

// readJSON decodes a size-limited request body into v, rejecting unknown
// fields and trailing data.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return errTooLarge
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New(errors.ErrCodeInvalidInput, "invalid JSON body: trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
