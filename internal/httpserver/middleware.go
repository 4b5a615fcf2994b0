package httpserver

import (
	"context"
	"errors"
	"famlink/internal/httpserver/handlers"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// RequestID stores a correlation id where chi's middleware.GetReqID finds it.
// A caller-supplied X-Request-Id is kept; otherwise a KSUID is minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = ksuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLog writes one structured line per request.
func AccessLog(lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			lg.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Recoverer turns a panic into the standard 500 body instead of a dropped
// connection.
func Recoverer(lg *zap.SugaredLogger, exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				stack := string(debug.Stack())
				lg.Errorw("panic recovered",
					"requestId", middleware.GetReqID(r.Context()),
					"panic", fmt.Sprint(rec),
					"stack", stack,
				)
				detail := ""
				if exposeDetail {
					detail = fmt.Sprintf("%v\n%s", rec, stack)
				}
				handlers.WriteError(w, r, http.StatusInternalServerError, "Internal server error", detail)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets a conservative baseline of response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
