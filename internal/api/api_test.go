package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Neumenon/hexweave/compiler"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/spelldb"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := spelldb.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	_, err = store.Load(context.Background(), []spelldb.Spell{
		{Translation: "Mind's Reflection", Direction: "NORTH_EAST", Pattern: "qaq"},
		{Translation: "Introspection", Direction: "WEST", Pattern: "qqq"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	synth := pattern.NewSynthesizer(pattern.DefaultSynthOptions())
	return NewServer(Options{
		Synth:      synth,
		Translator: compiler.NewTranslator(store, synth, nil),
		Spells:     store,
	})
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	decodeBody(t, w, &resp)
	if resp.Status != "healthy" || resp.Spells != 2 || resp.Version == "" {
		t.Errorf("health = %+v", resp)
	}
}

func TestNBTParseEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/nbt/parse", `{"input": "{\"a\":1b,b:[I;1,2]}"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp NBTResponse
	decodeBody(t, w, &resp)
	if resp.NBT != "{a:1b,b:[I;1,2]}" || resp.Kind != "compound" {
		t.Errorf("response = %+v", resp)
	}
}

func TestNBTParseEndpoint_SyntaxError(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/nbt/parse", `{"input": "{a:1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	var resp EngineError
	decodeBody(t, w, &resp)
	if resp.Type != ErrTypeSyntax || resp.Pos == nil || resp.RequestID == "" {
		t.Errorf("error = %+v", resp)
	}
}

func TestParseEndpoints_InvalidInput(t *testing.T) {
	h := newTestServer(t).Routes()

	tests := []struct {
		name  string
		path  string
		input string
	}{
		{"float with byte suffix", "/api/v1/nbt/parse", "1.5b"},
		{"mixed list", "/api/v1/nbt/parse", `[1b,"a"]`},
		{"unknown iota type", "/api/v1/iota/parse", `{"hexcasting:type":"bogus:x","hexcasting:data":1b}`},
		{"wrong data shape", "/api/v1/iota/parse", `{"hexcasting:type":"hexcasting:double","hexcasting:data":"x"}`},
		{"pattern without angles", "/api/v1/iota/parse", `[{"hexcasting:type":"hexcasting:pattern","hexcasting:data":{startDir:0b}}]`},
		{"mixed list in iota", "/api/v1/iota/parse", `{"hexcasting:type":"hexcasting:list","hexcasting:data":[1b,"a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(TextRequest{Input: tt.input})
			w := post(t, h, tt.path, string(body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body)
			}
			var resp EngineError
			decodeBody(t, w, &resp)
			if resp.Type != ErrTypeInvalidInput {
				t.Errorf("type = %q, want %q", resp.Type, ErrTypeInvalidInput)
			}
		})
	}
}

func TestIotaParseEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/iota/parse", `{"input": "[1, <e,w>]"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp IotaResponse
	decodeBody(t, w, &resp)
	if resp.Iota != "[1,<e,w>]" || resp.Type != "list" || resp.Count != 3 {
		t.Errorf("response = %+v", resp)
	}
	want := `{"hexcasting:type":"hexcasting:list","hexcasting:data":[` +
		`{"hexcasting:type":"hexcasting:double","hexcasting:data":1d},` +
		`{"hexcasting:type":"hexcasting:pattern","hexcasting:data":{startDir:1b,angles:[B;0b]}}]}`
	if resp.NBT != want {
		t.Errorf("nbt = %s", resp.NBT)
	}
}

func TestIotaParseEndpoint_Errors(t *testing.T) {
	h := newTestServer(t).Routes()

	tests := []struct {
		body   string
		status int
		typ    string
	}{
		{`{"input": ""}`, http.StatusUnprocessableEntity, ErrTypeNoMatch},
		{`{"input": "<bogus,w>"}`, http.StatusBadRequest, ErrTypeSyntax},
		{`{"input": "[1,2"}`, http.StatusBadRequest, ErrTypeSyntax},
		{`{"text": "1"}`, http.StatusBadRequest, ErrTypeInvalidRequest},
		{`not json`, http.StatusBadRequest, ErrTypeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := post(t, h, "/api/v1/iota/parse", tt.body)
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, w.Code)
			}
			var resp EngineError
			decodeBody(t, w, &resp)
			if resp.Type != tt.typ {
				t.Errorf("type = %q, want %q", resp.Type, tt.typ)
			}
		})
	}
}

func TestNumberEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/number", `{"value": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp NumberResponse
	decodeBody(t, w, &resp)
	if resp.Value != 10 || !strings.HasPrefix(resp.Pattern, "<se,aqaa") || !strings.HasPrefix(resp.Angles, "aqaa") {
		t.Errorf("response = %+v", resp)
	}
	if !strings.Contains(resp.NBT, "startDir:2b") {
		t.Errorf("nbt = %s", resp.NBT)
	}

	neg := post(t, h, "/api/v1/number", `{"value": -3}`)
	decodeBody(t, neg, &resp)
	if !strings.HasPrefix(resp.Pattern, "<ne,dedd") {
		t.Errorf("negative pattern = %s", resp.Pattern)
	}

	if w := post(t, h, "/api/v1/number", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing value: expected 400, got %d", w.Code)
	}
	if w := post(t, h, "/api/v1/number", `{"value": 1.5}`); w.Code != http.StatusBadRequest {
		t.Errorf("fractional value: expected 400, got %d", w.Code)
	}
}

func TestTranslateEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/translate", `{"lines": ["Mind's Reflection", "Mind's Reflexion", ""], "source": "{\nNumerical Reflection: 0"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp TranslateResponse
	decodeBody(t, w, &resp)
	if len(resp.Patterns) != 3 {
		t.Fatalf("patterns = %+v", resp.Patterns)
	}
	if len(resp.Missing) != 1 || resp.Missing[0] != "Mind's Reflexion" {
		t.Errorf("missing = %v", resp.Missing)
	}
	if resp.Iota != "[<ne,qaq>,<w,qqq>,<se,aqaa>]" {
		t.Errorf("iota = %s", resp.Iota)
	}
}

func TestTranslateEndpoint_NoTable(t *testing.T) {
	h := NewServer(Options{}).Routes()
	w := post(t, h, "/api/v1/translate", `{"lines": ["x"]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestGiveEndpoint(t *testing.T) {
	h := newTestServer(t).Routes()

	w := post(t, h, "/api/v1/give", `{"input": "[<e,w>, 2]", "template": "summon"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp GiveResponse
	decodeBody(t, w, &resp)
	if len(resp.Commands) != 1 || !strings.HasPrefix(resp.Commands[0], "summon item") {
		t.Errorf("commands = %v", resp.Commands)
	}
	if !strings.HasPrefix(resp.Summary, "1 commands,") {
		t.Errorf("summary = %q", resp.Summary)
	}
}

func TestGiveEndpoint_Errors(t *testing.T) {
	h := newTestServer(t).Routes()

	if w := post(t, h, "/api/v1/give", `{"input": "[1]", "template": "tellraw"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad template: expected 422, got %d", w.Code)
	}
	if w := post(t, h, "/api/v1/give", `{"input": "[1]", "limit": 10}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("tiny limit: expected 422, got %d", w.Code)
	}
	if w := post(t, h, "/api/v1/give", `{"input": ""}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty input: expected 422, got %d", w.Code)
	}
}

func TestNotFound(t *testing.T) {
	h := newTestServer(t).Routes()
	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
