package api

import (
	"net/http"

	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/httputil"
)

// Direct record CRUD is not served here: todo state lives on-chain and is
// mutated only through the prepare/submit transaction flow. The routes
// exist so clients get a clear answer instead of a 404.

const useTransactionFlow = "direct todo access is not implemented; use /api/transactions/prepare and /api/transactions/submit"

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, errors.NotImplemented(useTransactionFlow))
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, errors.NotImplemented(useTransactionFlow))
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, errors.NotImplemented(useTransactionFlow))
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, errors.NotImplemented(useTransactionFlow))
}
