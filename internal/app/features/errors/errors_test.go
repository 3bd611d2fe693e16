package errors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"not found", apperr.NotFound("op", "entry not found"), http.StatusNotFound, "not_found", "entry not found"},
		{"unauthorized", apperr.Unauthorized("op", "owner only"), http.StatusForbidden, "unauthorized", "owner only"},
		{"validation", apperr.Validation("op", "Title is required."), http.StatusBadRequest, "validation", "Title is required."},
		{"write failed hides cause", apperr.WriteFailed("op", fmt.Errorf("dial tcp: refused")), http.StatusInternalServerError, "write_failed", "internal error"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal", "internal error"},
	}
	el := uierrors.NewErrorLogger(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			el.Render(rec, httptest.NewRequest("GET", "/x", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
				Kind  string `json:"kind"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Kind != tt.wantKind || body.Error != tt.wantMsg {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		ctype   string
		wantErr string
	}{
		{"ok", `{"name":"a"}`, "application/json", ""},
		{"ok with charset", `{"name":"a"}`, "application/json; charset=utf-8", ""},
		{"empty", ``, "application/json", "empty"},
		{"bad json", `{"name":`, "application/json", "not valid JSON"},
		{"unknown field", `{"nome":"a"}`, "application/json", "not valid JSON"},
		{"two objects", `{"name":"a"}{"name":"b"}`, "application/json", "single JSON object"},
		{"wrong type", `name=a`, "application/x-www-form-urlencoded", "content type"},
		{"missing type", `{"name":"a"}`, "", "content type"},
		{"text plain", `{"name":"a"}`, "text/plain", "content type"},
		{"json prefix only", `{"name":"a"}`, "application/jsonx", "content type"},
		{"too large", `{"name":"` + strings.Repeat("a", uierrors.MaxBodyBytes) + `"}`, "application/json", "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/x", strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			var p payload
			err := uierrors.Decode(httptest.NewRecorder(), req, &p)
			if tt.wantErr == "" {
				if err != nil || p.Name != "a" {
					t.Fatalf("Decode = %v, %+v", err, p)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Decode error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	uierrors.NotFound(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
