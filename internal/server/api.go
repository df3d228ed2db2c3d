package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/internal/geo"
	"github.com/launchdash/dashboard/internal/util"
	"github.com/launchdash/dashboard/pkg/core"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

// launchJSON is the API representation of a launch row.
type launchJSON struct {
	FlightNumber    int     `json:"flightNumber"`
	LaunchSite      string  `json:"launchSite"`
	PayloadMassKg   float64 `json:"payloadMassKg"`
	Class           int     `json:"class"`
	BoosterVersion  string  `json:"boosterVersion"`
	BoosterCategory string  `json:"boosterCategory"`
}

// writeJSON encodes v before writing the header, so an encode failure can
// still answer 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.deps.Logger.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, callbacks.ErrUnknownOutput):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrUnknownSite), errors.Is(err, figure.ErrInvalidRange), errors.Is(err, errBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, figure.ErrEmptyFigure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var errBadQuery = errors.New("bad query")

// inputsFromQuery reads site, min and max. A missing bound falls back to
// the payload bounds of the table; no bounds at all leaves Payload nil.
func (s *Server) inputsFromQuery(r *http.Request) (core.Inputs, error) {
	q := r.URL.Query()
	in := core.Inputs{Site: q.Get("site")}

	rawMin, rawMax := q.Get("min"), q.Get("max")
	if rawMin == "" && rawMax == "" {
		return in, nil
	}

	rng := s.deps.Callbacks.Table().DefaultPayload()
	for i, raw := range []string{rawMin, rawMax} {
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !util.IsFinite(v) {
			return in, fmt.Errorf("%w: invalid payload bound %q", errBadQuery, raw)
		}
		rng[i] = v
	}
	in.Payload = &rng
	return in, nil
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Layout)
}

func (s *Server) figure(w http.ResponseWriter, r *http.Request) (figure.Figure, bool) {
	in, err := s.inputsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	f, err := s.deps.Callbacks.Figure(mux.Vars(r)["output"], in)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return f, true
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	if f, ok := s.figure(w, r); ok {
		s.writeJSON(w, http.StatusOK, f.Options())
	}
}

func (s *Server) handleFigurePNG(w http.ResponseWriter, r *http.Request) {
	f, ok := s.figure(w, r)
	if !ok {
		return
	}
	// rendered into memory first so a failure can still set the status
	var buf bytes.Buffer
	if err := f.RenderPNG(&buf); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleLaunches(w http.ResponseWriter, r *http.Request) {
	in, err := s.inputsFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	t := s.deps.Callbacks.Table()
	rng := t.DefaultPayload()
	if in.Payload != nil {
		rng = *in.Payload
	}

	rows, err := t.Filter(in.Site, rng.Low(), rng.High())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]launchJSON, 0, len(rows))
	for _, l := range rows {
		out = append(out, launchJSON{
			FlightNumber:    l.FlightNumber,
			LaunchSite:      l.LaunchSite,
			PayloadMassKg:   l.PayloadMassKg,
			Class:           int(l.Class),
			BoosterVersion:  l.BoosterVersion,
			BoosterCategory: l.BoosterCategory,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSitesGeoJSON(w http.ResponseWriter, _ *http.Request) {
	raw, err := geo.SitesGeoJSON(s.deps.Callbacks.Table())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(raw)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Monitor == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "status monitor disabled"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Monitor.Status())
}
