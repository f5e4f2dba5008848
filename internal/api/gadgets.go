package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gadgetd/internal/gadget"
)

// invalidStatusMessage names the permitted values.
var invalidStatusMessage = "Invalid status value, possible values are " + gadget.StatusList()

// gadgetResponse wraps a gadget with an acknowledgement message.
type gadgetResponse struct {
	Message string         `json:"message"`
	Gadget  *gadget.Gadget `json:"gadget"`
}

// selfDestructResponse is returned when a self-destruct sequence is armed.
type selfDestructResponse struct {
	Message          string    `json:"message"`
	ConfirmationCode string    `json:"confirmationCode"`
	Instructions     string    `json:"instructions"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// updateGadgetRequest is the body of PATCH /api/gadgets/{id}.
// Absent fields are left unchanged.
type updateGadgetRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// confirmRequest is the body of POST /api/gadgets/{id}/self-destruct/confirm.
type confirmRequest struct {
	ConfirmationCode string `json:"confirmationCode"`
}

// handleListGadgets lists gadgets, optionally filtered by ?status=.
// A status parameter that is present must name a status, so ?status= is a 400.
func (s *Server) handleListGadgets(w http.ResponseWriter, r *http.Request) {
	var filter *gadget.Status
	if query := r.URL.Query(); query.Has("status") {
		st, err := gadget.ParseStatus(query.Get("status"))
		if err != nil {
			writeBadRequest(w, invalidStatusMessage)
			return
		}
		filter = &st
	}

	listed, err := s.gadgets.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, gadget.ErrNoGadgets) {
			writeNotFound(w, "no gadgets found")
			return
		}
		s.gadgetError(w, r, "listing gadgets", err)
		return
	}

	writeJSON(w, http.StatusOK, listed)
}

// handleCreateGadget adds a gadget with a random codename and status.
func (s *Server) handleCreateGadget(w http.ResponseWriter, r *http.Request) {
	g, err := s.gadgets.Create(r.Context())
	if err != nil {
		s.gadgetError(w, r, "creating gadget", err)
		return
	}
	writeJSON(w, http.StatusCreated, gadgetResponse{Message: "Gadget created successfully", Gadget: g})
}

// handleGetGadget returns a single gadget.
func (s *Server) handleGetGadget(w http.ResponseWriter, r *http.Request) {
	id, ok := gadgetID(w, r)
	if !ok {
		return
	}

	g, err := s.gadgets.Get(r.Context(), id)
	if err != nil {
		s.gadgetError(w, r, "getting gadget", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleUpdateGadget applies a partial update.
func (s *Server) handleUpdateGadget(w http.ResponseWriter, r *http.Request) {
	id, ok := gadgetID(w, r)
	if !ok {
		return
	}

	var req updateGadgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	update := gadget.Update{Name: req.Name}
	if req.Status != nil {
		st, err := gadget.ParseStatus(*req.Status)
		if err != nil {
			writeBadRequest(w, invalidStatusMessage)
			return
		}
		update.Status = &st
	}

	g, err := s.gadgets.Update(r.Context(), id, update)
	if err != nil {
		s.gadgetError(w, r, "updating gadget", err)
		return
	}
	writeJSON(w, http.StatusOK, gadgetResponse{Message: "Gadget updated successfully", Gadget: g})
}

// handleRetireGadget marks a gadget Decommissioned.
func (s *Server) handleRetireGadget(w http.ResponseWriter, r *http.Request) {
	id, ok := gadgetID(w, r)
	if !ok {
		return
	}

	g, err := s.gadgets.Retire(r.Context(), id)
	if err != nil {
		s.gadgetError(w, r, "decommissioning gadget", err)
		return
	}
	writeJSON(w, http.StatusOK, gadgetResponse{Message: "Gadget decommissioned", Gadget: g})
}

// handleSelfDestruct arms the self-destruct sequence and returns the code.
func (s *Server) handleSelfDestruct(w http.ResponseWriter, r *http.Request) {
	id, ok := gadgetID(w, r)
	if !ok {
		return
	}

	ticket, err := s.gadgets.SelfDestruct(r.Context(), id)
	if err != nil {
		s.gadgetError(w, r, "arming self-destruct", err)
		return
	}
	writeJSON(w, http.StatusOK, selfDestructResponse{
		Message:          "Self-destruct sequence initiated",
		ConfirmationCode: ticket.ConfirmationCode,
		Instructions:     "Enter this code to confirm destruction",
		ExpiresAt:        ticket.ExpiresAt,
	})
}

// handleConfirmSelfDestruct consumes the code and destroys the gadget.
func (s *Server) handleConfirmSelfDestruct(w http.ResponseWriter, r *http.Request) {
	id, ok := gadgetID(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	g, err := s.gadgets.ConfirmSelfDestruct(r.Context(), id, req.ConfirmationCode)
	if err != nil {
		s.gadgetError(w, r, "confirming self-destruct", err)
		return
	}
	writeJSON(w, http.StatusOK, gadgetResponse{Message: "Gadget destroyed", Gadget: g})
}

// gadgetID parses the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func gadgetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid gadget id")
		return 0, false
	}
	return id, true
}

// gadgetError maps gadget sentinel errors to HTTP responses.
// Anything unrecognised is logged and collapsed to a 500.
func (s *Server) gadgetError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, gadget.ErrGadgetNotFound):
		writeNotFound(w, "gadget not found")
	case errors.Is(err, gadget.ErrInvalidName):
		writeBadRequest(w, err.Error())
	case errors.Is(err, gadget.ErrInvalidStatus):
		writeBadRequest(w, invalidStatusMessage)
	case errors.Is(err, gadget.ErrInvalidConfirmation):
		writeBadRequest(w, "invalid or expired confirmation code")
	default:
		s.logger.Error(op+" failed", "error", err, "request_id", requestID(r.Context()))
		writeInternalError(w, "error "+op)
	}
}
