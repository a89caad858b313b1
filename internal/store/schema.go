package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    generated_at TEXT NOT NULL,
    package_count INTEGER NOT NULL,
    outdated_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    document TEXT NOT NULL,
    warnings TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);
`
