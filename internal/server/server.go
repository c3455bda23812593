// Package server exposes the issue tracker as JSON resource endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/service"
)

// Server routes HTTP requests to the service layer.
type Server struct {
	svc      *service.Service
	resolver auth.Resolver
	log      *logrus.Entry
	router   *mux.Router
}

// New builds the server and its route table.
func New(svc *service.Service, resolver auth.Resolver, log *logrus.Entry) *Server {
	s := &Server{svc: svc, resolver: resolver, log: log}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/issues", s.handleCreateIssue).Methods(http.MethodPost)
	r.HandleFunc("/issues", s.handleListIssues).Methods(http.MethodGet)
	r.HandleFunc("/issues/{id:[0-9]+}", s.handleGetIssue).Methods(http.MethodGet)
	r.HandleFunc("/issues/{id:[0-9]+}", s.handlePatchIssue).Methods(http.MethodPatch)
	r.HandleFunc("/issues/{id:[0-9]+}", s.handleDeleteIssue).Methods(http.MethodDelete)
	r.HandleFunc("/issues/{id:[0-9]+}/comments", s.handleCreateComment).Methods(http.MethodPost)
	r.HandleFunc("/issues/{id:[0-9]+}/comments", s.handleListComments).Methods(http.MethodGet)
	r.HandleFunc("/labels", s.handleCreateLabel).Methods(http.MethodPost)
	r.HandleFunc("/labels", s.handleListLabels).Methods(http.MethodGet)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods(http.MethodGet)

	return r
}

// session resolves the request's session. A resolver failure is treated
// as unauthenticated; the failure itself is logged.
func (s *Server) session(r *http.Request) *auth.Session {
	session, err := s.resolver.Resolve(r)
	if err != nil {
		s.log.WithError(err).Warn("session resolution failed")
		return nil
	}
	return session
}

// pathID extracts the {id} route variable. The route pattern guarantees
// digits, so parse failures do not happen in practice.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		duration := time.Since(start)
		requestsTotal.WithLabelValues(strconv.Itoa(rec.status), r.Method, route).Inc()
		requestDuration.WithLabelValues(route).Observe(duration.Seconds())
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": duration.String(),
		}).Info("request handled")
	})
}

// ListenAndServe runs the server on addr until ctx is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
