package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "nope")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Error != "nope" {
		t.Errorf("error = %q, want %q", resp.Error, "nope")
	}
	if resp.Code != "" {
		t.Errorf("code = %q, want empty", resp.Code)
	}
}

func TestWriteErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorWithCode(rec, http.StatusTooManyRequests, "slow down", "rate_limited")

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Error != "slow down" || resp.Code != "rate_limited" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRequireMethod_Match(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	if !RequireMethod(rec, req, http.MethodGet, http.MethodHead) {
		t.Error("expected GET to pass")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want no error written", rec.Code)
	}
}

func TestRequireMethod_Mismatch(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/health", nil)

	if RequireMethod(rec, req, http.MethodGet, http.MethodHead) {
		t.Error("expected DELETE to be rejected")
	}
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Errorf("Allow = %q, want %q", allow, "GET, HEAD")
	}
}

func TestDecodeJSON_Valid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/flow/analyze", strings.NewReader(`{"range":"week"}`))

	var body struct {
		Range string `json:"range"`
	}
	if !DecodeJSON(rec, req, &body) {
		t.Fatalf("expected decode to succeed, got %s", rec.Body.String())
	}
	if body.Range != "week" {
		t.Errorf("range = %q, want week", body.Range)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/flow/analyze", strings.NewReader(`{"range":`))

	var body struct {
		Range string `json:"range"`
	}
	if DecodeJSON(rec, req, &body) {
		t.Fatal("expected decode to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ab", "****"},
		{"abcd", "****"},
		{"abcdefgh", "abcd****"},
	}
	for _, c := range cases {
		if got := maskSecret(c.in); got != c.want {
			t.Errorf("maskSecret(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	if v, err := parseInt("42"); err != nil || v != 42 {
		t.Errorf("parseInt(42) = %d, %v", v, err)
	}
	if _, err := parseInt("forty-two"); err == nil {
		t.Error("expected error for non-numeric input")
	}
	if v, err := parseInt("-3"); err != nil || v != -3 {
		t.Errorf("parseInt(-3) = %d, %v", v, err)
	}
}
