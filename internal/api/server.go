// Package api serves the parsers, the number synthesizer, spell
// translation and command export over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Neumenon/hexweave/compiler"
	"github.com/Neumenon/hexweave/give"
	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/nbt"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/stream"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// SpellCounter reports the size of the loaded spell table.
type SpellCounter interface {
	Count(ctx context.Context) (int, error)
}

// Options configures a Server. Translator and Spells may be nil, in which
// case /api/v1/translate answers 503 and health reports zero spells.
type Options struct {
	Synth          *pattern.Synthesizer
	Translator     *compiler.Translator
	Spells         SpellCounter
	GiveLimit      int
	GiveTemplate   give.Template
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server handles HTTP requests.
type Server struct {
	opts      Options
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	if opts.Synth == nil {
		opts.Synth = pattern.NewSynthesizer(pattern.DefaultSynthOptions())
	}
	if opts.GiveLimit <= 0 {
		opts.GiveLimit = give.DefaultLimit
	}
	if opts.GiveTemplate == "" {
		opts.GiveTemplate = give.Give
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "[API] ", log.LstdFlags)
	}
	return &Server{opts: opts, logger: logger, startTime: time.Now()}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/nbt/parse", s.handleNBTParse)
		r.Post("/iota/parse", s.handleIotaParse)
		r.Post("/number", s.handleNumber)
		r.Post("/translate", s.handleTranslate)
		r.Post("/give", s.handleGive)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// decode reads a JSON body into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeInvalidRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Hexweave-Version", Version)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

// writeError writes an EngineError.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	s.writeJSON(w, status, EngineError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// handleError maps err to a status and error type.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	e := EngineError{Message: err.Error(), RequestID: middleware.GetReqID(r.Context())}
	status := http.StatusInternalServerError

	var syn *stream.SyntaxError
	switch {
	case errors.As(err, &syn):
		status, e.Type = http.StatusBadRequest, ErrTypeSyntax
		pos := syn.Pos
		e.Pos = &pos
	case errors.Is(err, nbt.ErrUnsupportedFloatForIntegralType),
		errors.Is(err, nbt.ErrHeterogeneousList),
		errors.Is(err, nbt.ErrEmptyKey),
		errors.Is(err, nbt.ErrDuplicateKey),
		errors.Is(err, hexiota.ErrUnknownType),
		errors.Is(err, hexiota.ErrMalformed),
		errors.Is(err, give.ErrBadShorthand):
		status, e.Type = http.StatusBadRequest, ErrTypeInvalidInput
	case errors.Is(err, hexiota.ErrNoMatch):
		status, e.Type = http.StatusUnprocessableEntity, ErrTypeNoMatch
	case errors.Is(err, pattern.ErrSearchExhausted),
		errors.Is(err, pattern.ErrInvalidMask),
		errors.Is(err, give.ErrTooLarge),
		errors.Is(err, give.ErrUnknownTemplate):
		status, e.Type = http.StatusUnprocessableEntity, ErrTypeInvalidValue
	case errors.Is(err, context.DeadlineExceeded):
		status, e.Type = http.StatusGatewayTimeout, ErrTypeTimeout
	default:
		e.Type = ErrTypeInternal
		s.logger.Printf("request %s failed: %v", e.RequestID, err)
	}
	s.writeJSON(w, status, e)
}
