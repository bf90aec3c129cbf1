package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/go-chi/chi/v5"
)

const kindNotFound = "not_found"

type chatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

// PostChat handles the POST /v1/chat request.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req chatRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		req.ConversationID = r.FormValue("conversationId")
		req.Message = r.FormValue("message")
	} else {
		body, err := decodeJSONObject(r.Body)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, domain.KindValidation, "invalid request body: "+err.Error())
			return
		}
		req.ConversationID, _ = body["conversationId"].(string)
		req.Message, _ = body["message"].(string)
	}

	turn, err := s.chat.Send(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		s.writeError(w, "PostChat", err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

// ListConversations handles the GET /v1/conversations request.
func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.chat.List(r.Context())
	if err != nil {
		s.writeError(w, "ListConversations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": ids})
}

// GetConversation handles the GET /v1/conversations/{id} request.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.chat.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetConversation", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteConversation handles the DELETE /v1/conversations/{id} request.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.Forget(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteConversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrConversationNotFound) {
		writeFailure(w, http.StatusNotFound, kindNotFound, err.Error())
		return
	}
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, map[string]any{"error": domain.Failed("", err).Error})
}
