package db

// PostgreSQL migrations for the explorer item store.

var postgresMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_categories_table",
		Up: `
			CREATE TABLE IF NOT EXISTS explorer_categories (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				description TEXT,
				created_at TIMESTAMPTZ DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS explorer_categories;
		`,
	},
	{
		Version: 2,
		Name:    "create_items_table",
		Up: `
			CREATE TABLE IF NOT EXISTS explorer_items (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT,
				primary_url TEXT,
				notes TEXT,
				status TEXT NOT NULL DEFAULT 'PLANNED',
				category_id BIGINT REFERENCES explorer_categories(id),
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_explorer_items_status ON explorer_items(status);
			CREATE INDEX IF NOT EXISTS idx_explorer_items_category_id ON explorer_items(category_id);
			CREATE INDEX IF NOT EXISTS idx_explorer_items_created_at ON explorer_items(created_at);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_explorer_items_created_at;
			DROP INDEX IF EXISTS idx_explorer_items_category_id;
			DROP INDEX IF EXISTS idx_explorer_items_status;
			DROP TABLE IF EXISTS explorer_items;
		`,
	},
	{
		Version: 3,
		Name:    "create_links_table",
		Up: `
			CREATE TABLE IF NOT EXISTS explorer_links (
				id BIGSERIAL PRIMARY KEY,
				item_id TEXT NOT NULL REFERENCES explorer_items(id) ON DELETE CASCADE,
				url TEXT NOT NULL,
				label TEXT,
				kind TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_explorer_links_item_id ON explorer_links(item_id);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_explorer_links_item_id;
			DROP TABLE IF EXISTS explorer_links;
		`,
	},
	{
		Version: 4,
		Name:    "create_tags_tables",
		Up: `
			CREATE TABLE IF NOT EXISTS explorer_tags (
				id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE
			);
			CREATE TABLE IF NOT EXISTS explorer_item_tags (
				item_id TEXT NOT NULL REFERENCES explorer_items(id) ON DELETE CASCADE,
				tag_id BIGINT NOT NULL REFERENCES explorer_tags(id) ON DELETE CASCADE,
				PRIMARY KEY (item_id, tag_id)
			);
			CREATE INDEX IF NOT EXISTS idx_explorer_item_tags_tag_id ON explorer_item_tags(tag_id);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_explorer_item_tags_tag_id;
			DROP TABLE IF EXISTS explorer_item_tags;
			DROP TABLE IF EXISTS explorer_tags;
		`,
	},
}
