package api

import (
	"log"
	"net/http"
	"time"

	"github.com/Zinaxy/HailAndCottonPrac/internal/platform/obs"
)

// responseRecorder remembers the status and body size a handler produced.
type responseRecorder struct {
	http.ResponseWriter
	code    int
	written int
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.code == 0 {
		rr.code = code
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.code == 0 {
		rr.code = http.StatusOK
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

func (rr *responseRecorder) status() int {
	if rr.code == 0 {
		return http.StatusOK
	}
	return rr.code
}

// withRequestLog assigns a request id, turns handler panics into a 500 and
// writes one access line per request.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := obs.WithRequestID(r.Context())
		r = r.WithContext(ctx)
		rec := &responseRecorder{ResponseWriter: w}

		defer func() {
			if p := recover(); p != nil {
				log.Printf("req_id=%s panic=%v", obs.RequestID(ctx), p)
				if rec.code == 0 {
					http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}
			log.Printf("req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
				obs.RequestID(ctx), r.Method, r.URL.RequestURI(), rec.status(), rec.written, time.Since(start).Milliseconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
