package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/httputil"
	"github.com/soltodo/service-layer/internal/middleware"
	"github.com/soltodo/service-layer/internal/todo"
)

func todoIDFromPath(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, errors.InvalidArgument("invalid todo id")
	}
	return id, nil
}

func (s *Server) handlePrepareCreate(w http.ResponseWriter, r *http.Request) {
	var req todo.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, errors.InvalidArgument("invalid request body"))
		return
	}

	prepared, err := s.todos.PrepareCreate(r.Context(), middleware.Identity(r), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prepared)
}

func (s *Server) handlePrepareUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req todo.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, errors.InvalidArgument("invalid request body"))
		return
	}

	prepared, err := s.todos.PrepareUpdate(r.Context(), middleware.Identity(r), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prepared)
}

func (s *Server) handlePrepareDelete(w http.ResponseWriter, r *http.Request) {
	var req todo.DeleteTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, errors.InvalidArgument("invalid request body"))
		return
	}

	prepared, err := s.todos.PrepareDelete(r.Context(), middleware.Identity(r), req.TodoID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prepared)
}

func (s *Server) handlePrepareInitialize(w http.ResponseWriter, r *http.Request) {
	prepared, err := s.todos.PrepareInitialize(r.Context(), middleware.Identity(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prepared)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req todo.SignedTransaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, errors.InvalidArgument("invalid request body"))
		return
	}

	signature, err := s.todos.Submit(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"signature": signature})
}
