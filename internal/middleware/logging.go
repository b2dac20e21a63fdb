// Package middleware holds HTTP middleware shared by every route.
package middleware

import (
	"log"
	"net/http"
	"time"
)

// quietPaths are polled by probes and scrapers and not worth a log line
// unless they fail.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// statusWriter wraps http.ResponseWriter to capture the status code and the
// response size.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.status = http.StatusOK
		w.wrote = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestLogger logs each request with client address, method, path, status,
// response size and duration. Successful probe requests are not logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		if quietPaths[r.URL.Path] && sw.status < http.StatusBadRequest {
			return
		}
		log.Printf("http: %s %s %s %d %dB %s",
			r.RemoteAddr, r.Method, r.URL.Path, sw.status, sw.bytes, time.Since(start).Round(time.Microsecond))
	})
}
