package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recallhq/recall/internal/store"
)

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	conversations, err := h.store.GetConversationsByUserID(userID)
	if err != nil {
		log.Printf("Error listing conversations for user %d: %v", userID, err)
		http.Error(w, "Failed to list conversations", http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []store.Conversation{}
	}
	json.NewEncoder(w).Encode(conversations)
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.store.GetConversationByID(conversationID, userID)
	if err != nil {
		log.Printf("Error getting conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}
	if conversation == nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}

	concepts, err := h.store.GetConceptsByConversationID(conversationID, userID)
	if err != nil {
		log.Printf("Error getting concepts for conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation concepts", http.StatusInternalServerError)
		return
	}
	if concepts == nil {
		concepts = []store.Concept{}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"conversation": conversation,
		"concepts":     concepts,
	})
}

type UpdateConversationRequest struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
}

func (h *APIHandler) UpdateConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	conversation, err := h.store.GetConversationByID(conversationID, userID)
	if err != nil {
		log.Printf("Error getting conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}
	if conversation == nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}

	if req.Title != nil && *req.Title != "" {
		conversation.Title = *req.Title
	}
	if req.Summary != nil {
		conversation.Summary = *req.Summary
	}
	if err := h.store.UpdateConversationMeta(conversationID, userID, conversation.Title, conversation.Summary); err != nil {
		log.Printf("Error updating conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to update conversation", http.StatusInternalServerError)
		return
	}
	conversation.Content = ""
	json.NewEncoder(w).Encode(conversation)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.store.DeleteConversation(conversationID, userID); err != nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
