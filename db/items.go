package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombar/explorer/models"
)

// ListFilter holds the query-by filters for listing items. Archived items
// are excluded unless Archived explicitly asks for them.
type ListFilter struct {
	Query    string
	Status   string
	Category string
	Tag      string
	Favorite *bool
	Archived *bool
	Sort     string // newest (default), oldest, title
}

// UpdateItemParams holds the optional fields of a partial item update. Nil
// fields are left untouched; Links and Tags replace the existing sets
// wholesale when present. JSON keys match the Item serialization so a PUT
// body can echo back what a GET returned.
type UpdateItemParams struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	PrimaryURL  *string        `json:"primary_url"`
	Notes       *string        `json:"notes"`
	Status      *string        `json:"status"`
	Category    *string        `json:"category"`
	IsFavorite  *bool          `json:"is_favorite"`
	IsArchived  *bool          `json:"is_archived"`
	Links       *[]models.Link `json:"links"`
	Tags        *[]string      `json:"tags"`
}

// CreateItem persists an item with its category, links, and tags in one
// transaction. The category is created on the fly if it does not exist.
func (db *DB) CreateItem(item *models.Item) (*models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = models.StatusPlanned
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID sql.NullInt64
	if item.Category != "" {
		id, err := upsertCategory(tx, item.Category, fmt.Sprintf("Auto-created category: %s", item.Category))
		if err != nil {
			return nil, fmt.Errorf("failed to upsert category: %w", err)
		}
		categoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO explorer_items (id, title, description, primary_url, notes, status, category_id, is_favorite, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.ID, item.Title, item.Description, item.PrimaryURL, item.Notes, item.Status, categoryID, item.IsFavorite, item.IsArchived, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	if err := insertLinks(tx, item.ID, item.Links); err != nil {
		return nil, err
	}
	if err := attachTags(tx, item.ID, item.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return db.GetItem(item.ID)
}

// GetItem retrieves a single item with its links and tags. Returns nil
// when no item exists.
func (db *DB) GetItem(id string) (*models.Item, error) {
	item := &models.Item{}
	var category sql.NullString
	var description, primaryURL, notes sql.NullString

	err := db.conn.QueryRow(`
		SELECT i.id, i.title, i.description, i.primary_url, i.notes, i.status,
		       c.name, i.is_favorite, i.is_archived, i.created_at, i.updated_at
		FROM explorer_items i
		LEFT JOIN explorer_categories c ON c.id = i.category_id
		WHERE i.id = $1
	`, id).Scan(&item.ID, &item.Title, &description, &primaryURL, &notes, &item.Status,
		&category, &item.IsFavorite, &item.IsArchived, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	item.Description = description.String
	item.PrimaryURL = primaryURL.String
	item.Notes = notes.String
	item.Category = category.String

	if err := db.loadLinksAndTags(item); err != nil {
		return nil, err
	}

	return item, nil
}

// ListItems retrieves items matching the filter.
func (db *DB) ListItems(filter ListFilter) ([]*models.Item, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf("(i.title ILIKE %s OR i.description ILIKE %s OR i.notes ILIKE %s)", p, p, p))
	}
	if filter.Status != "" {
		conditions = append(conditions, "i.status = "+arg(filter.Status))
	}
	if filter.Category != "" {
		conditions = append(conditions, "c.name = "+arg(filter.Category))
	}
	if filter.Tag != "" {
		conditions = append(conditions, `i.id IN (
			SELECT it.item_id FROM explorer_item_tags it
			JOIN explorer_tags t ON t.id = it.tag_id
			WHERE t.name = `+arg(filter.Tag)+")")
	}
	if filter.Favorite != nil {
		conditions = append(conditions, "i.is_favorite = "+arg(*filter.Favorite))
	}
	if filter.Archived != nil {
		conditions = append(conditions, "i.is_archived = "+arg(*filter.Archived))
	} else {
		conditions = append(conditions, "i.is_archived = FALSE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "i.created_at DESC"
	switch strings.ToLower(filter.Sort) {
	case "oldest":
		orderBy = "i.created_at ASC"
	case "title":
		orderBy = "i.title ASC"
	}

	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT i.id, i.title, i.description, i.primary_url, i.notes, i.status,
		       c.name, i.is_favorite, i.is_archived, i.created_at, i.updated_at
		FROM explorer_items i
		LEFT JOIN explorer_categories c ON c.id = i.category_id
		%s
		ORDER BY %s
	`, where, orderBy), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		var category, description, primaryURL, notes sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &description, &primaryURL, &notes, &item.Status,
			&category, &item.IsFavorite, &item.IsArchived, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Description = description.String
		item.PrimaryURL = primaryURL.String
		item.Notes = notes.String
		item.Category = category.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for _, item := range items {
		if err := db.loadLinksAndTags(item); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// UpdateItem applies a partial update in a transaction and returns the
// updated item. Scalar fields update in place; Links and Tags, when
// present, replace the existing rows entirely.
func (db *DB) UpdateItem(id string, params UpdateItemParams) (*models.Item, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS (SELECT 1 FROM explorer_items WHERE id = $1)", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("no item found with id: %s", id)
	}

	var sets []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Title != nil {
		sets = append(sets, "title = "+arg(*params.Title))
	}
	if params.Description != nil {
		sets = append(sets, "description = "+arg(*params.Description))
	}
	if params.PrimaryURL != nil {
		sets = append(sets, "primary_url = "+arg(*params.PrimaryURL))
	}
	if params.Notes != nil {
		sets = append(sets, "notes = "+arg(*params.Notes))
	}
	if params.Status != nil {
		sets = append(sets, "status = "+arg(*params.Status))
	}
	if params.IsFavorite != nil {
		sets = append(sets, "is_favorite = "+arg(*params.IsFavorite))
	}
	if params.IsArchived != nil {
		sets = append(sets, "is_archived = "+arg(*params.IsArchived))
	}
	if params.Category != nil {
		categoryID, err := upsertCategory(tx, *params.Category, fmt.Sprintf("Auto-created category: %s", *params.Category))
		if err != nil {
			return nil, fmt.Errorf("failed to upsert category: %w", err)
		}
		sets = append(sets, "category_id = "+arg(categoryID))
	}

	if len(sets) > 0 || params.Links != nil || params.Tags != nil {
		sets = append(sets, "updated_at = NOW()")
		if _, err := tx.Exec(fmt.Sprintf("UPDATE explorer_items SET %s WHERE id = %s", strings.Join(sets, ", "), arg(id)), args...); err != nil {
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
	}

	if params.Links != nil {
		if _, err := tx.Exec("DELETE FROM explorer_links WHERE item_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear links: %w", err)
		}
		if err := insertLinks(tx, id, *params.Links); err != nil {
			return nil, err
		}
	}

	if params.Tags != nil {
		if _, err := tx.Exec("DELETE FROM explorer_item_tags WHERE item_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := attachTags(tx, id, *params.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return db.GetItem(id)
}

// insertLinks writes the item's links, skipping entries with no URL.
func insertLinks(tx *sql.Tx, itemID string, links []models.Link) error {
	for _, link := range links {
		if link.URL == "" {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO explorer_links (item_id, url, label, kind) VALUES ($1, $2, $3, $4)
		`, itemID, link.URL, link.Label, link.Kind); err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}
	return nil
}

// attachTags upserts each tag by name and joins it to the item. Blank tags
// are skipped.
func attachTags(tx *sql.Tx, itemID string, tags []string) error {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		var tagID int64
		if err := tx.QueryRow(`
			INSERT INTO explorer_tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = excluded.name
			RETURNING id
		`, tag).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to upsert tag: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO explorer_item_tags (item_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, itemID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}
	return nil
}

// DeleteItem removes an item; its links and tag joins cascade.
func (db *DB) DeleteItem(id string) error {
	res, err := db.conn.Exec("DELETE FROM explorer_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no item found with id: %s", id)
	}
	return nil
}

// CountItems returns the total number of items.
func (db *DB) CountItems() (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM explorer_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (db *DB) loadLinksAndTags(item *models.Item) error {
	item.Links = []models.Link{}
	item.Tags = []string{}

	rows, err := db.conn.Query("SELECT url, label, kind FROM explorer_links WHERE item_id = $1 ORDER BY id", item.ID)
	if err != nil {
		return fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var link models.Link
		var label, kind sql.NullString
		if err := rows.Scan(&link.URL, &label, &kind); err != nil {
			return fmt.Errorf("failed to scan link: %w", err)
		}
		link.Label = label.String
		link.Kind = kind.String
		item.Links = append(item.Links, link)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate links: %w", err)
	}

	tagRows, err := db.conn.Query(`
		SELECT t.name FROM explorer_tags t
		JOIN explorer_item_tags it ON it.tag_id = t.id
		WHERE it.item_id = $1
		ORDER BY t.name
	`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		item.Tags = append(item.Tags, tag)
	}
	return tagRows.Err()
}
