package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func timeoutHandler(t *testing.T, d time.Duration, h http.HandlerFunc) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	Timeout(d)(h).ServeHTTP(rec, req)
	return rec, req
}

func TestTimeout_FastHandlerPassesThrough(t *testing.T) {
	rec, _ := timeoutHandler(t, 1*time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"data":[]}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestTimeout_SlowHandlerGets504(t *testing.T) {
	rec, _ := timeoutHandler(t, 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "request timeout") {
		t.Errorf("body = %q, want timeout message", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestTimeout_CancelsHandlerContext(t *testing.T) {
	canceled := make(chan struct{}, 1)

	rec, _ := timeoutHandler(t, 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			canceled <- struct{}{}
		}
	})

	select {
	case <-canceled:
	case <-time.After(1 * time.Second):
		t.Fatal("handler context was never canceled")
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestTimeout_SetsDeadlineOnContext(t *testing.T) {
	start := time.Now()
	deadlines := make(chan time.Time, 1)

	timeoutHandler(t, 1*time.Second, func(w http.ResponseWriter, r *http.Request) {
		if deadline, ok := r.Context().Deadline(); ok {
			deadlines <- deadline
		}
		w.WriteHeader(http.StatusOK)
	})

	select {
	case deadline := <-deadlines:
		want := start.Add(1 * time.Second)
		if deadline.Before(want.Add(-100*time.Millisecond)) || deadline.After(want.Add(100*time.Millisecond)) {
			t.Errorf("deadline = %v, want around %v", deadline, want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("handler saw no deadline")
	}
}

func TestTimeout_LateWriteIsDropped(t *testing.T) {
	wrote := make(chan struct{})

	rec, _ := timeoutHandler(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("too late"))
		close(wrote)
	})

	// The 504 body must be the only thing the client receives, no matter
	// what the handler writes afterwards.
	<-wrote
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "too late") {
		t.Errorf("late handler write leaked into response: %q", rec.Body.String())
	}
}

func TestTimeout_ImplicitWriteHeader(t *testing.T) {
	rec, _ := timeoutHandler(t, 1*time.Second, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want implicit 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestTimeout_MultipleWritesAccumulate(t *testing.T) {
	rec, _ := timeoutHandler(t, 1*time.Second, func(w http.ResponseWriter, r *http.Request) {
		for _, chunk := range []string{"first ", "second ", "third"} {
			_, _ = w.Write([]byte(chunk))
		}
	})

	if rec.Body.String() != "first second third" {
		t.Errorf("body = %q, want accumulated chunks", rec.Body.String())
	}
}
