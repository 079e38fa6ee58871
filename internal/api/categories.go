package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/recallhq/recall/internal/core"
	"github.com/recallhq/recall/internal/store"
)

func (h *APIHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	categories, err := h.categories.List(userID)
	if err != nil {
		log.Printf("Error listing categories for user %d: %v", userID, err)
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []store.Category{}
	}
	json.NewEncoder(w).Encode(categories)
}

type CreateCategoryRequest struct {
	Path []string `json:"path"`
}

func (h *APIHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Path) == 0 {
		http.Error(w, "Category path is required", http.StatusBadRequest)
		return
	}

	category, err := h.categories.Create(userID, req.Path)
	if err != nil {
		log.Printf("Error creating category for user %d: %v", userID, err)
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

type RenameCategoryRequest struct {
	Path    []string `json:"path"`
	NewName string   `json:"new_name"`
}

func (h *APIHandler) RenameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req RenameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Path) == 0 || req.NewName == "" {
		http.Error(w, "Path and new name are required", http.StatusBadRequest)
		return
	}

	if err := h.categories.Rename(userID, req.Path, req.NewName); err != nil {
		writeCategoryError(w, userID, "rename", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MoveCategoryRequest struct {
	Path      []string `json:"path"`
	NewParent []string `json:"new_parent"`
}

func (h *APIHandler) MoveCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req MoveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Path) == 0 {
		http.Error(w, "Path is required", http.StatusBadRequest)
		return
	}

	if err := h.categories.Move(userID, req.Path, req.NewParent); err != nil {
		writeCategoryError(w, userID, "move", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DeleteCategoryRequest struct {
	Path []string `json:"path"`
}

func (h *APIHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req DeleteCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Path) == 0 {
		http.Error(w, "Path is required", http.StatusBadRequest)
		return
	}

	if err := h.categories.Delete(userID, req.Path); err != nil {
		writeCategoryError(w, userID, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCategoryError(w http.ResponseWriter, userID int64, op string, err error) {
	switch {
	case errors.Is(err, core.ErrCategoryNotFound):
		http.Error(w, "Category not found", http.StatusNotFound)
	case errors.Is(err, core.ErrCategoryCycle):
		http.Error(w, "Cannot move a category into its own subtree", http.StatusConflict)
	default:
		log.Printf("Error on category %s for user %d: %v", op, userID, err)
		http.Error(w, "Failed to "+op+" category", http.StatusInternalServerError)
	}
}
