package sqlite

// Baseline schema (schema_version 0). Column positions are a contract:
// once assigned, an ordinal never changes. New columns are appended by
// version-gated migrations (see migrations.go) and must be nullable or
// carry a default so rows written under older versions stay valid.
const schema = `
-- Config table (prefix, schema_version)
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Tasks table
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK(length(title) <= 500),
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open',
    priority INTEGER NOT NULL DEFAULT 2 CHECK(priority >= 0 AND priority <= 4),
    assignee TEXT,
    parent_id TEXT REFERENCES tasks(id),
    tags TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);

-- Dependencies table: child_id is blocked by parent_id
CREATE TABLE IF NOT EXISTS dependencies (
    child_id TEXT NOT NULL REFERENCES tasks(id),
    parent_id TEXT NOT NULL REFERENCES tasks(id),
    PRIMARY KEY (child_id, parent_id),
    CHECK (child_id != parent_id)
);

CREATE INDEX IF NOT EXISTS idx_deps_child ON dependencies(child_id);
CREATE INDEX IF NOT EXISTS idx_deps_parent ON dependencies(parent_id);

-- Comments table (append-only)
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id TEXT NOT NULL REFERENCES tasks(id),
    body TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id);

-- Fresh stores start at version 0; migrations bring them current.
INSERT OR IGNORE INTO config (key, value) VALUES ('schema_version', '0');
`
