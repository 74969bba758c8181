// Package httpapi implements C9: the read-only HTTP query surface of
// spec.md §6, plus the Prometheus exposition endpoint. The server is
// mounted as a manager.Runnable so its lifecycle is tied to the same
// context the reconciler runs under (see SPEC_FULL.md's resolution of
// the open question on HTTP/reconcile shutdown ordering).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
)

const (
	shutdownTimeout = 5 * time.Second
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 120 * time.Second
)

// Server serves the read-only HTTP surface against the live API, not the
// reconciler's cache, per spec.md §4.8's last sentence.
type Server struct {
	log        logr.Logger
	httpServer *http.Server
	// reader is the manager's non-cached, direct API reader.
	reader client.Reader
}

// New builds a Server listening on addr ("host:port").
func New(addr string, reader client.Reader, log logr.Logger) *Server {
	s := &Server{log: log, reader: reader}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /gordos", s.handleListGordos)
	mux.HandleFunc("GET /gordos/{name}", s.handleGetGordo)
	mux.HandleFunc("GET /models", s.handleListModels)
	mux.HandleFunc("GET /models/{gordoName}", s.handleModelsForGordo)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	handler := chain(mux,
		recoveryMiddleware(log),
		loggingMiddleware(log),
		bodySizeLimitMiddleware(log),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ErrorLog:     slog.NewLogLogger(logr.ToSlogHandler(log), slog.LevelInfo),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Start implements manager.Runnable. It blocks until ctx is cancelled or
// the server fails to start.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error(err, "error shutting down http server")
		}
	}()

	s.log.Info("starting http server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListGordos(w http.ResponseWriter, r *http.Request) {
	var list equinorv1.GordoList
	if err := s.reader.List(r.Context(), &list); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, list.Items)
}

func (s *Server) handleGetGordo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var list equinorv1.GordoList
	if err := s.reader.List(r.Context(), &list); err != nil {
		s.writeError(w, err)
		return
	}
	for i := range list.Items {
		if list.Items[i].Name == name {
			writeJSON(w, list.Items[i])
			return
		}
	}
	writeStatus(w, s.log, "gordo not found", metav1.StatusReasonNotFound, http.StatusNotFound)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	var list equinorv1.ModelList
	if err := s.reader.List(r.Context(), &list); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, list.Items)
}

// handleModelsForGordo implements the §4.7 ownership-and-revision
// predicate: only Models owned by gordoName whose project-revision (or
// legacy project-version) label matches the Gordo's current status are
// returned.
func (s *Server) handleModelsForGordo(w http.ResponseWriter, r *http.Request) {
	gordoName := r.PathValue("gordoName")

	var gordoList equinorv1.GordoList
	if err := s.reader.List(r.Context(), &gordoList); err != nil {
		s.writeError(w, err)
		return
	}
	var gordo *equinorv1.Gordo
	for i := range gordoList.Items {
		if gordoList.Items[i].Name == gordoName {
			gordo = &gordoList.Items[i]
			break
		}
	}
	if gordo == nil || gordo.Status == nil {
		writeJSON(w, []equinorv1.Model{})
		return
	}

	var modelList equinorv1.ModelList
	if err := s.reader.List(r.Context(), &modelList); err != nil {
		s.writeError(w, err)
		return
	}

	var matched []equinorv1.Model
	for i := range modelList.Items {
		m := &modelList.Items[i]
		if !ownedByName(m, gordoName) {
			continue
		}
		revision, ok := equinorv1.ProjectRevision(m.Labels)
		if !ok || revision != gordo.Status.ProjectRevision {
			continue
		}
		matched = append(matched, *m)
	}
	writeJSON(w, matched)
}

func ownedByName(model *equinorv1.Model, gordoName string) bool {
	for _, ref := range model.OwnerReferences {
		if ref.Kind == "Gordo" && ref.Name == gordoName {
			return true
		}
	}
	return false
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if apierrors.IsNotFound(err) {
		writeStatus(w, s.log, "not found", metav1.StatusReasonNotFound, http.StatusNotFound)
		return
	}
	s.log.Error(err, "http handler error")
	writeStatus(w, s.log, "internal error", metav1.StatusReasonInternalError, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, log logr.Logger, message string, reason metav1.StatusReason, code int32) {
	status := metav1.Status{
		Status:  metav1.StatusFailure,
		Message: message,
		Reason:  reason,
		Code:    code,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(int(code))
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error(err, "failed to write error response")
	}
}
