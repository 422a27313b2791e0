// Package httpapi is the admin surface: enrollment, permission rules, audit
// queries, and manual access checks. Recognition events do not flow through
// HTTP — the recognition loop feeds the handler in-process.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mereles/facegate/internal/facegate/service"
	"github.com/mereles/facegate/internal/facegate/store"
)

type Dependencies struct {
	Logger      *log.Logger
	Addr        string
	Identities  store.IdentityStore
	Permissions store.PermissionStore
	Events      store.AccessEventStore
	Evaluator   *service.Evaluator
}

type Server struct {
	httpServer  *http.Server
	logger      *log.Logger
	mux         *http.ServeMux
	identities  store.IdentityStore
	permissions store.PermissionStore
	events      store.AccessEventStore
	evaluator   *service.Evaluator
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:      d.Logger,
		mux:         mux,
		identities:  d.Identities,
		permissions: d.Permissions,
		events:      d.Events,
		evaluator:   d.Evaluator,
	}

	mux.HandleFunc("POST /v1/identities", s.handleCreateIdentity)
	mux.HandleFunc("GET /v1/identities", s.handleListIdentities)
	mux.HandleFunc("GET /v1/identities/{id}", s.handleGetIdentity)
	mux.HandleFunc("PATCH /v1/identities/{id}", s.handleUpdateIdentity)
	mux.HandleFunc("DELETE /v1/identities/{id}", s.handleDeleteIdentity)

	mux.HandleFunc("POST /v1/identities/{id}/rules", s.handleCreateRule)
	mux.HandleFunc("GET /v1/identities/{id}/rules", s.handleListRules)
	mux.HandleFunc("DELETE /v1/rules/{id}", s.handleDeleteRule)

	mux.HandleFunc("GET /v1/events", s.handleQueryEvents)
	mux.HandleFunc("GET /v1/stats", s.handleStats)

	mux.HandleFunc("POST /v1/access_checks", s.handleAccessCheck)

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
