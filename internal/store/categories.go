package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *PostgresStore) CreateCategory(cat *Category) error {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if len(cat.Path) == 0 {
		return fmt.Errorf("category path cannot be empty")
	}
	cat.Name = cat.Path[len(cat.Path)-1]
	cat.CreatedAt = time.Now()

	pathJSON, err := marshalJSON(cat.Path)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(rebind(`INSERT INTO categories (id, user_id, name, path, created_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (user_id, path) DO NOTHING`),
		cat.ID, cat.UserID, cat.Name, pathJSON, cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategoriesByUserID returns the category tree with per-path concept
// counts, ordered so parents precede children.
func (s *PostgresStore) GetCategoriesByUserID(userID int64) ([]Category, error) {
	rows, err := s.db.Query(rebind(`SELECT c.id, c.user_id, c.name, c.path, c.created_at,
		(SELECT COUNT(*) FROM concepts k WHERE k.user_id = c.user_id AND k.category_path = c.path)
		FROM categories c WHERE c.user_id = ? ORDER BY c.path ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var cat Category
		var pathJSON string
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &pathJSON, &cat.CreatedAt, &cat.ConceptCount); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		cat.Path = unmarshalStrings(pathJSON)
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (s *PostgresStore) GetCategoryByPath(userID int64, path []string) (*Category, error) {
	pathJSON, err := marshalJSON(path)
	if err != nil {
		return nil, err
	}

	var cat Category
	var rawPath string
	err = s.db.QueryRow(rebind("SELECT id, user_id, name, path, created_at FROM categories WHERE user_id = ? AND path = ?"), userID, pathJSON).
		Scan(&cat.ID, &cat.UserID, &cat.Name, &rawPath, &cat.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	cat.Path = unmarshalStrings(rawPath)
	return &cat, nil
}

func (s *PostgresStore) DeleteCategoryByPath(userID int64, path []string) error {
	pathJSON, err := marshalJSON(path)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(rebind("DELETE FROM categories WHERE user_id = ? AND path = ?"), userID, pathJSON)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

// CategoryNames returns the flat list of category display names ("A > B")
// used to steer extraction prompts.
func (s *PostgresStore) CategoryNames(userID int64) ([]string, error) {
	cats, err := s.GetCategoriesByUserID(userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, strings.Join(cat.Path, " > "))
	}
	return names, nil
}

// RewriteCategoryPaths applies a path transformation to every category and
// concept belonging to the user, inside one transaction. The rewrite callback
// returns the new path and whether the row changed. Rename and move are both
// expressed through this: the callback rewrites matching path prefixes.
func (s *PostgresStore) RewriteCategoryPaths(userID int64, rewrite func(path []string) ([]string, bool)) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Categories first.
	rows, err := tx.Query(rebind("SELECT id, path FROM categories WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	type pathUpdate struct {
		id   string
		path []string
	}
	var catUpdates []pathUpdate
	for rows.Next() {
		var id, pathJSON string
		if err := rows.Scan(&id, &pathJSON); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan category row: %w", err)
		}
		if newPath, changed := rewrite(unmarshalStrings(pathJSON)); changed {
			catUpdates = append(catUpdates, pathUpdate{id: id, path: newPath})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range catUpdates {
		pathJSON, err := marshalJSON(u.path)
		if err != nil {
			return err
		}
		name := u.path[len(u.path)-1]
		if _, err := tx.Exec(rebind("UPDATE categories SET name = ?, path = ? WHERE id = ?"), name, pathJSON, u.id); err != nil {
			return fmt.Errorf("failed to update category path: %w", err)
		}
	}

	// Then concepts, keeping the display category in sync with the path.
	rows, err = tx.Query(rebind("SELECT id, category_path FROM concepts WHERE user_id = ?"), userID)
	if err != nil {
		return fmt.Errorf("failed to query concepts: %w", err)
	}
	var conceptUpdates []pathUpdate
	for rows.Next() {
		var id, pathJSON string
		if err := rows.Scan(&id, &pathJSON); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan concept row: %w", err)
		}
		if newPath, changed := rewrite(unmarshalStrings(pathJSON)); changed {
			conceptUpdates = append(conceptUpdates, pathUpdate{id: id, path: newPath})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range conceptUpdates {
		pathJSON, err := marshalJSON(u.path)
		if err != nil {
			return err
		}
		display := strings.Join(u.path, " > ")
		if _, err := tx.Exec(rebind("UPDATE concepts SET category = ?, category_path = ?, updated_at = ? WHERE id = ?"),
			display, pathJSON, time.Now(), u.id); err != nil {
			return fmt.Errorf("failed to update concept category path: %w", err)
		}
	}

	return tx.Commit()
}
