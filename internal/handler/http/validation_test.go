package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func validate(target string, body io.Reader) (*httptest.ResponseRecorder, *bool) {
	reached := false
	handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	method := http.MethodGet
	if body != nil {
		method = http.MethodPost
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec, &reached
}

func TestInputValidation_PathLength(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		allowed bool
	}{
		{"normal route", "/ingest/newsapi", true},
		{"path at the limit", "/" + strings.Repeat("a", 2047), true},
		{"path one over", "/articles/" + strings.Repeat("a", 2039), false},
		{"long query string still passes", "/articles?keyword=" + strings.Repeat("a", 3000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := validate(tt.target, nil)

			if tt.allowed {
				if !*reached || rec.Code != http.StatusOK {
					t.Errorf("reached=%v code=%d, want handler reached with 200", *reached, rec.Code)
				}
				return
			}
			if *reached {
				t.Error("handler ran for an oversized path")
			}
			if rec.Code != http.StatusRequestURITooLong {
				t.Errorf("code = %d, want 414", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "URI too long") {
				t.Errorf("body = %q", rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestInputValidation_BodyCap(t *testing.T) {
	handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.Copy(io.Discard, r.Body); err == nil {
			t.Error("reading a 2MB body should fail at the 1MB cap")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(make([]byte, 2<<20))))
}

func TestInputValidation_SmallBodyReadable(t *testing.T) {
	var got string
	handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		got = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{"source":"gdelt"}`)))

	if got != `{"source":"gdelt"}` {
		t.Errorf("handler read %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d", rec.Code)
	}
}
