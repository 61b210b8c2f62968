package handlers

import (
	"log/slog"
	"net/http"

	"systems-api/internal/procname"
	"systems-api/internal/shared/errors"
	"systems-api/internal/shared/response"
)

type ProcnameResponse struct {
	IsPGSystem bool `json:"is_pg_system"`
	IsPGSector bool `json:"is_pg_sector"`
}

type ProcnameHandler struct {
	names procname.Interpreter
}

func NewProcnameHandler(names procname.Interpreter) *ProcnameHandler {
	return &ProcnameHandler{names: names}
}

// Check reports whether ?name= is a procedural system name and whether it
// is a plausible sector name.
func (h *ProcnameHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "procname")

	name, ok := nameParam(w, r, logger)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, ProcnameResponse{
		IsPGSystem: h.names.IsProceduralName(name),
		IsPGSector: h.names.IsValidSectorName(name),
	})
}

// Coords predicts where the procedural system ?name= lies in its sector.
func (h *ProcnameHandler) Coords(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "proccoords")

	name, ok := nameParam(w, r, logger)
	if !ok {
		return
	}

	prediction, err := h.names.PredictSystem(h.names.Canonicalize(name))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("name is not a procedurally generated system name", err))
		return
	}

	response.Success(w, http.StatusOK, prediction)
}

func nameParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return "", false
	}

	q := r.URL.Query()
	if !q.Has("name") {
		response.Error(w, r, logger, errors.Validation("Missing name parameter"))
		return "", false
	}

	return q.Get("name"), true
}
