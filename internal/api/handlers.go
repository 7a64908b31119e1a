package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Neumenon/hexweave/give"
	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/nbt"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Version:       Version,
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		CachedNumbers: s.opts.Synth.CacheLen(),
	}
	if s.opts.Spells != nil {
		n, err := s.opts.Spells.Count(r.Context())
		if err != nil {
			resp.Status = "degraded"
		}
		resp.Spells = n
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNBTParse(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	tag, err := nbt.Parse(req.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NBTResponse{NBT: nbt.Emit(tag), Kind: tag.Kind().String()})
}

func (s *Server) handleIotaParse(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := hexiota.Parse(req.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if res.Value == nil {
		s.handleError(w, r, hexiota.ErrNoMatch)
		return
	}
	lowered, err := res.Value.NBTString()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, IotaResponse{
		Iota:     res.Value.String(),
		NBT:      lowered,
		Type:     res.Value.Type().String(),
		Count:    res.Value.Count(),
		Warnings: res.Warnings,
	})
}

func (s *Server) handleNumber(w http.ResponseWriter, r *http.Request) {
	var req NumberRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Value == nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeInvalidRequest, "value is required")
		return
	}
	p, err := s.opts.Synth.Number(r.Context(), *req.Value)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	lowered, err := hexiota.Pattern(p).NBTString()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NumberResponse{
		Value:     *req.Value,
		Pattern:   p.String(),
		Direction: p.Direction.Name(),
		Angles:    p.Angles,
		NBT:       lowered,
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.opts.Translator == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "no spell table loaded")
		return
	}
	var req TranslateRequest
	if !s.decode(w, r, &req) {
		return
	}
	lines := req.Lines
	if req.Source != "" {
		lines = append(lines, strings.Split(req.Source, "\n")...)
	}

	resp := TranslateResponse{Patterns: []TranslatedLine{}}
	var elems []*hexiota.Iota
	for _, line := range lines {
		p, err := s.opts.Translator.Translate(r.Context(), line)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		if p == nil {
			if strings.TrimSpace(line) != "" {
				resp.Missing = append(resp.Missing, line)
			}
			continue
		}
		resp.Patterns = append(resp.Patterns, TranslatedLine{Line: line, Pattern: p.String()})
		elems = append(elems, hexiota.Pattern(*p))
	}
	resp.Iota = hexiota.List(elems...).String()
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGive(w http.ResponseWriter, r *http.Request) {
	var req GiveRequest
	if !s.decode(w, r, &req) {
		return
	}
	tmpl := s.opts.GiveTemplate
	if req.Template != "" {
		t, err := give.ParseTemplate(req.Template)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		tmpl = t
	}
	limit := s.opts.GiveLimit
	if req.Limit > 0 {
		limit = req.Limit
	}

	v, err := hexiota.ParseValue(req.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := give.Split(v, limit, tmpl)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GiveResponse{
		Commands: res.Commands,
		Summary:  res.Summary(),
		Warnings: res.Warnings,
	})
}
