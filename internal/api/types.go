package api

// EngineError is the JSON body of every error response.
type EngineError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	// Pos is the byte offset of a syntax error.
	Pos *int `json:"pos,omitempty"`
}

func (e EngineError) Error() string {
	return e.Message
}

// Error types
const (
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeSyntax         = "syntax_error"
	ErrTypeInvalidInput   = "invalid_input"
	ErrTypeNoMatch        = "no_match"
	ErrTypeInvalidValue   = "invalid_value"
	ErrTypeUnavailable    = "service_unavailable"
	ErrTypeTimeout        = "timeout"
	ErrTypeInternal       = "internal_error"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	Spells        int    `json:"spells"`
	CachedNumbers int    `json:"cached_numbers"`
}

// TextRequest carries source text to parse.
type TextRequest struct {
	Input string `json:"input"`
}

// NBTResponse is returned by POST /api/v1/nbt/parse.
type NBTResponse struct {
	NBT  string `json:"nbt"`
	Kind string `json:"kind"`
}

// IotaResponse is returned by POST /api/v1/iota/parse.
type IotaResponse struct {
	Iota     string   `json:"iota"`
	NBT      string   `json:"nbt"`
	Type     string   `json:"type"`
	Count    int      `json:"count"`
	Warnings []string `json:"warnings,omitempty"`
}

// NumberRequest asks for the pattern that pushes Value.
type NumberRequest struct {
	Value *int64 `json:"value"`
}

// NumberResponse is returned by POST /api/v1/number.
type NumberResponse struct {
	Value     int64  `json:"value"`
	Pattern   string `json:"pattern"`
	Direction string `json:"direction"`
	Angles    string `json:"angles"`
	NBT       string `json:"nbt"`
}

// TranslateRequest holds spell-name lines. Source is split on newlines
// and appended to Lines.
type TranslateRequest struct {
	Lines  []string `json:"lines"`
	Source string   `json:"source"`
}

// TranslatedLine is one translated line.
type TranslatedLine struct {
	Line    string `json:"line"`
	Pattern string `json:"pattern"`
}

// TranslateResponse is returned by POST /api/v1/translate.
type TranslateResponse struct {
	Patterns []TranslatedLine `json:"patterns"`
	Missing  []string         `json:"missing,omitempty"`
	Iota     string           `json:"iota"`
}

// GiveRequest asks for commands carrying the iota in Input.
type GiveRequest struct {
	Input    string `json:"input"`
	Template string `json:"template,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// GiveResponse is returned by POST /api/v1/give.
type GiveResponse struct {
	Commands []string `json:"commands"`
	Summary  string   `json:"summary"`
	Warnings []string `json:"warnings,omitempty"`
}
