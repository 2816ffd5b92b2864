package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// NewRouter mounts the pessoa routes. Anything else, wrong methods included, is a 404.
func NewRouter(h *Handler, logger zerolog.Logger) *httprouter.Router {
	router := httprouter.New()

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.HandleMethodNotAllowed = false
	router.HandleOPTIONS = false

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		logger.Error().
			Interface("panic", v).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("handler panic")
		w.WriteHeader(http.StatusInternalServerError)
	}

	router.POST("/pessoas", h.CreatePessoa)
	router.GET("/pessoas", h.GetPessoas)
	router.GET("/pessoas/:id", h.GetPessoa)
	router.GET("/contagem-pessoas", h.GetPessoaCount)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs each request at debug level.
func RequestLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logger.GetLevel() > zerolog.DebugLevel {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}
