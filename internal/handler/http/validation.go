package http

import "net/http"

// Path length cap. Real routes here are short; anything longer is abuse.
const maxPathLength = 2048

// InputValidation rejects oversized request paths and caps body reads at
// 1MB through http.MaxBytesReader. The API is read-mostly and the trigger
// endpoints carry no payload, so the cap is generous.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
			next.ServeHTTP(w, r)
		})
	}
}
