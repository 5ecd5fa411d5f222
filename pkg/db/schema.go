package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per translate or evaluate invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,                 -- translate, evaluate
    input_file TEXT NOT NULL,
    model TEXT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    question_count INTEGER DEFAULT 0,
    success_count INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Run questions: every question processed, with its outcome
CREATE TABLE IF NOT EXISTS run_questions (
    question_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    line_number INTEGER NOT NULL,
    question TEXT NOT NULL,
    status TEXT NOT NULL,               -- success, failed
    error_message TEXT,
    query_json TEXT,                    -- normalized query as JSON, when one was produced
    result_count INTEGER DEFAULT 0,
    score REAL DEFAULT 0,               -- evaluate runs only
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_questions_run ON run_questions(run_id);
CREATE INDEX IF NOT EXISTS idx_run_questions_status ON run_questions(status);
`
