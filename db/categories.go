package db

import (
	"database/sql"
	"fmt"

	"github.com/zombar/explorer/models"
	"github.com/zombar/explorer/slug"
)

// seedCategories is the fixed starter set applied by SeedCategories.
var seedCategories = []models.Category{
	{Name: "AI_AGENTS", Description: "AI agents, LLMs, and machine learning tools"},
	{Name: "AUTOMATION", Description: "Workflow automation and integration platforms"},
	{Name: "SOFTWARE", Description: "Applications, frameworks, and developer tooling"},
	{Name: "RASPBERRY_PI", Description: "Raspberry Pi and single-board computer projects"},
	{Name: "PRINTER_3D", Description: "3D printing hardware, models, and slicers"},
	{Name: "ELECTRONICS", Description: "Electronics projects, components, and circuits"},
	{Name: "WEB_TOOLS", Description: "Websites, web apps, and online utilities"},
	{Name: "PRODUCTIVITY", Description: "Productivity methods and organization tools"},
	{Name: "MARKETING", Description: "Marketing, SEO, and business growth"},
	{Name: "OTHER", Description: "Everything that fits nowhere else"},
}

// ListCategories retrieves all categories with their item counts.
func (db *DB) ListCategories() ([]*models.Category, error) {
	rows, err := db.conn.Query(`
		SELECT c.id, c.name, c.description, COUNT(i.id), c.created_at
		FROM explorer_categories c
		LEFT JOIN explorer_items i ON i.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.ItemCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category, normalizing the name to UPPER_SNAKE.
// Creating a category that already exists returns the existing row.
func (db *DB) CreateCategory(name, description string) (*models.Category, error) {
	name = slug.CategoryName(name)
	if name == "" {
		return nil, fmt.Errorf("category name is empty after normalization")
	}

	c := &models.Category{}
	var desc sql.NullString
	err := db.conn.QueryRow(`
		INSERT INTO explorer_categories (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id, name, description, created_at
	`, name, description).Scan(&c.ID, &c.Name, &desc, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	c.Description = desc.String
	return c, nil
}

// SeedCategories upserts the fixed starter categories. Existing rows keep
// their descriptions.
func (db *DB) SeedCategories() (int, error) {
	inserted := 0
	for _, c := range seedCategories {
		res, err := db.conn.Exec(`
			INSERT INTO explorer_categories (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, c.Name, c.Description)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// upsertCategory creates the category if needed and returns its id. Names
// are normalized to UPPER_SNAKE before insertion.
func upsertCategory(tx *sql.Tx, name, description string) (int64, error) {
	name = slug.CategoryName(name)
	var id int64
	err := tx.QueryRow(`
		INSERT INTO explorer_categories (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id
	`, name, description).Scan(&id)
	return id, err
}
