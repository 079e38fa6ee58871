package core

import (
	"fmt"
	"log"

	"github.com/recallhq/recall/internal/store"
)

// ErrCategoryCycle is returned when a move would place a category inside its
// own subtree.
var ErrCategoryCycle = fmt.Errorf("cannot move a category into its own subtree")

// ErrCategoryNotFound is returned when the named category path does not exist.
var ErrCategoryNotFound = fmt.Errorf("category not found")

// HasPathPrefix reports whether path starts with the exact segments of
// prefix. Matching is per segment, so ["Web"] is not a prefix of
// ["WebAssembly"].
func HasPathPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// RewritePath replaces the oldPrefix of path with newPrefix. The second
// return value reports whether the path matched at all.
func RewritePath(path, oldPrefix, newPrefix []string) ([]string, bool) {
	if !HasPathPrefix(path, oldPrefix) {
		return path, false
	}
	rewritten := make([]string, 0, len(newPrefix)+len(path)-len(oldPrefix))
	rewritten = append(rewritten, newPrefix...)
	rewritten = append(rewritten, path[len(oldPrefix):]...)
	return rewritten, true
}

// CategoryService manages the hierarchical category tree.
type CategoryService struct {
	store *store.PostgresStore
}

func NewCategoryService(s *store.PostgresStore) *CategoryService {
	return &CategoryService{store: s}
}

func (cs *CategoryService) List(userID int64) ([]store.Category, error) {
	return cs.store.GetCategoriesByUserID(userID)
}

func (cs *CategoryService) Create(userID int64, path []string) (*store.Category, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("category path cannot be empty")
	}
	cat := &store.Category{UserID: userID, Path: path}
	if err := cs.store.CreateCategory(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Rename changes the last segment of a category path. Every descendant
// category and every concept under the subtree is rewritten with it.
func (cs *CategoryService) Rename(userID int64, path []string, newName string) error {
	if len(path) == 0 || newName == "" {
		return fmt.Errorf("path and new name are required")
	}
	existing, err := cs.store.GetCategoryByPath(userID, path)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}

	newPath := append(append([]string{}, path[:len(path)-1]...), newName)
	return cs.rewriteSubtree(userID, path, newPath)
}

// Move re-parents a category subtree. newParent may be empty to move the
// category to the top level.
func (cs *CategoryService) Move(userID int64, path, newParent []string) error {
	if len(path) == 0 {
		return fmt.Errorf("path is required")
	}
	if HasPathPrefix(newParent, path) {
		return ErrCategoryCycle
	}
	existing, err := cs.store.GetCategoryByPath(userID, path)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}

	newPath := append(append([]string{}, newParent...), path[len(path)-1])
	return cs.rewriteSubtree(userID, path, newPath)
}

func (cs *CategoryService) rewriteSubtree(userID int64, oldPrefix, newPrefix []string) error {
	err := cs.store.RewriteCategoryPaths(userID, func(path []string) ([]string, bool) {
		return RewritePath(path, oldPrefix, newPrefix)
	})
	if err != nil {
		return fmt.Errorf("failed to rewrite category subtree: %w", err)
	}
	return nil
}

// Delete removes a category. Concepts under it are reassigned to the parent
// category, or to General at the top level. Descendant categories collapse
// into the parent the same way.
func (cs *CategoryService) Delete(userID int64, path []string) error {
	if len(path) == 0 {
		return fmt.Errorf("path is required")
	}
	existing, err := cs.store.GetCategoryByPath(userID, path)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}

	parent := path[:len(path)-1]
	if len(parent) == 0 {
		parent = []string{"General"}
		if err := cs.store.CreateCategory(&store.Category{UserID: userID, Path: parent}); err != nil {
			log.Printf("Warning: could not ensure fallback category exists: %v", err)
		}
	}

	// Remove the row first so the rewrite cannot collide with an existing
	// parent row on the unique path constraint.
	if err := cs.store.DeleteCategoryByPath(userID, path); err != nil {
		return err
	}
	return cs.rewriteSubtree(userID, path, parent)
}

// DefaultCategories is the starter tree seeded for new installs.
var DefaultCategories = [][]string{
	{"Programming"},
	{"Programming", "Algorithms"},
	{"Programming", "Data Structures"},
	{"Programming", "Web Development"},
	{"Programming", "Databases"},
	{"Programming", "DevOps"},
	{"Programming", "System Design"},
	{"Programming", "Machine Learning"},
	{"General"},
	{"Health & Fitness"},
	{"Finance"},
	{"Languages"},
}

// SeedDefaults creates the default category tree for a user. Existing rows
// are left alone.
func (cs *CategoryService) SeedDefaults(userID int64) error {
	for _, path := range DefaultCategories {
		if err := cs.store.CreateCategory(&store.Category{UserID: userID, Path: path}); err != nil {
			return fmt.Errorf("failed to seed category %v: %w", path, err)
		}
	}
	return nil
}
