package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/deepgram/ragbridge/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// Recover turns a handler panic into a JSON 500. When the response has
// already started, the connection is left to close on its own.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}

			log.Ctx(r.Context()).Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("Handler panicked")

			if rec.status == 0 {
				httpext.JsonFailure(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
