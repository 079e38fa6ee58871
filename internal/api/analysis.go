package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/recallhq/recall/internal/core"
	"github.com/recallhq/recall/internal/store"
)

func (h *APIHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req core.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	result, err := h.extractor.Extract(r.Context(), userID, req)
	if err != nil {
		log.Printf("Extraction failed for user %d: %v", userID, err)
		http.Error(w, "Extraction failed", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(result)
}

type QuizRequest struct {
	ConceptID    string `json:"concept_id"`
	NumQuestions int    `json:"num_questions"`
	CustomAPIKey string `json:"custom_api_key"`
}

func (h *APIHandler) GenerateQuizHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ConceptID == "" {
		http.Error(w, "Concept ID is required", http.StatusBadRequest)
		return
	}

	quiz, err := h.quiz.Generate(r.Context(), userID, req.ConceptID, req.NumQuestions, req.CustomAPIKey)
	if err != nil {
		log.Printf("Quiz generation failed for concept %s: %v", req.ConceptID, err)
		http.Error(w, "Quiz generation failed", http.StatusInternalServerError)
		return
	}
	if quiz == nil {
		http.Error(w, "Concept not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(quiz)
}

type JourneyRequest struct {
	ConversationText string `json:"conversation_text"`
	CustomAPIKey     string `json:"custom_api_key"`
}

func (h *APIHandler) JourneyHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req JourneyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	analysis, err := h.journey.Analyze(r.Context(), userID, req.ConversationText, req.CustomAPIKey)
	if err != nil {
		log.Printf("Journey analysis failed for user %d: %v", userID, err)
		http.Error(w, "Journey analysis failed", http.StatusInternalServerError)
		return
	}
	if analysis == nil {
		http.Error(w, "No concepts to analyze yet", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(analysis)
}

type FeedbackRequest struct {
	ConceptID *string `json:"concept_id"`
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
}

func (h *APIHandler) CreateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	fb := &store.Feedback{
		UserID:    userID,
		ConceptID: req.ConceptID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.store.CreateFeedback(fb); err != nil {
		log.Printf("Error saving feedback for user %d: %v", userID, err)
		http.Error(w, "Failed to save feedback", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fb)
}

func (h *APIHandler) ListFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	items, err := h.store.GetFeedbackByUserID(userID)
	if err != nil {
		log.Printf("Error listing feedback for user %d: %v", userID, err)
		http.Error(w, "Failed to list feedback", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []store.Feedback{}
	}
	json.NewEncoder(w).Encode(items)
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	limit := queryInt(r, "limit", 20)

	sessions, err := h.store.GetAnalysisSessionsByUserID(userID, limit)
	if err != nil {
		log.Printf("Error listing sessions for user %d: %v", userID, err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []store.AnalysisSession{}
	}
	json.NewEncoder(w).Encode(sessions)
}

func (h *APIHandler) LearningStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	stats, err := h.learner.Stats(userID)
	if err != nil {
		log.Printf("Error loading learning stats for user %d: %v", userID, err)
		http.Error(w, "Failed to load learning stats", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}
