package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/recallhq/recall/internal/store"
)

const defaultConceptPageSize = 50

func (h *APIHandler) ListConceptsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", defaultConceptPageSize)
	offset := queryInt(r, "offset", 0)

	concepts, err := h.store.GetConceptsByUserID(userID, category, query, limit, offset)
	if err != nil {
		log.Printf("Error listing concepts for user %d: %v", userID, err)
		http.Error(w, "Failed to list concepts", http.StatusInternalServerError)
		return
	}
	if concepts == nil {
		concepts = []store.Concept{}
	}
	json.NewEncoder(w).Encode(concepts)
}

func (h *APIHandler) GetConceptHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conceptID := chi.URLParam(r, "conceptID")

	concept, err := h.store.GetConceptByID(conceptID, userID)
	if err != nil {
		log.Printf("Error getting concept %s: %v", conceptID, err)
		http.Error(w, "Failed to get concept", http.StatusInternalServerError)
		return
	}
	if concept == nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}

	snippets, err := h.store.GetCodeSnippetsByConceptID(conceptID)
	if err != nil {
		log.Printf("Error getting snippets for concept %s: %v", conceptID, err)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"concept":       concept,
		"code_snippets": snippets,
	})
}

type UpdateConceptRequest struct {
	Title       *string `json:"title"`
	Summary     *string `json:"summary"`
	Details     *string `json:"details"`
	KeyTakeaway *string `json:"key_takeaway"`
	Category    *string `json:"category"`
}

func (h *APIHandler) UpdateConceptHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conceptID := chi.URLParam(r, "conceptID")

	var req UpdateConceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	concept, err := h.store.GetConceptByID(conceptID, userID)
	if err != nil {
		log.Printf("Error getting concept %s: %v", conceptID, err)
		http.Error(w, "Failed to get concept", http.StatusInternalServerError)
		return
	}
	if concept == nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}

	if req.Title != nil && *req.Title != "" {
		concept.Title = *req.Title
	}
	if req.Summary != nil {
		concept.Summary = *req.Summary
	}
	if req.Details != nil {
		concept.Details = *req.Details
	}
	if req.KeyTakeaway != nil {
		concept.KeyTakeaway = *req.KeyTakeaway
	}
	if err := h.store.UpdateConcept(concept); err != nil {
		log.Printf("Error updating concept %s: %v", conceptID, err)
		http.Error(w, "Failed to update concept", http.StatusInternalServerError)
		return
	}

	// Category changes go through the service so the correction is learned.
	if req.Category != nil && *req.Category != "" && *req.Category != concept.Category {
		concept, err = h.concepts.UpdateCategory(userID, conceptID, *req.Category)
		if err != nil {
			log.Printf("Error updating category for concept %s: %v", conceptID, err)
			http.Error(w, "Failed to update concept category", http.StatusInternalServerError)
			return
		}
	}

	json.NewEncoder(w).Encode(concept)
}

func (h *APIHandler) DeleteConceptHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conceptID := chi.URLParam(r, "conceptID")

	if err := h.store.DeleteConcept(conceptID, userID); err != nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ReviewRequest struct {
	Remembered bool `json:"remembered"`
}

func (h *APIHandler) ReviewConceptHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conceptID := chi.URLParam(r, "conceptID")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	concept, err := h.concepts.Review(userID, conceptID, req.Remembered)
	if err != nil {
		log.Printf("Error reviewing concept %s: %v", conceptID, err)
		http.Error(w, "Failed to review concept", http.StatusInternalServerError)
		return
	}
	if concept == nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(concept)
}

func (h *APIHandler) ListOccurrencesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	conceptID := chi.URLParam(r, "conceptID")

	concept, err := h.store.GetConceptByID(conceptID, userID)
	if err != nil {
		log.Printf("Error getting concept %s: %v", conceptID, err)
		http.Error(w, "Failed to get concept", http.StatusInternalServerError)
		return
	}
	if concept == nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}

	occurrences, err := h.store.GetOccurrencesByConceptID(conceptID)
	if err != nil {
		log.Printf("Error listing occurrences for concept %s: %v", conceptID, err)
		http.Error(w, "Failed to list occurrences", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(occurrences)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
