package runlog

// RunsSchema defines the table holding one row per sync run
const RunsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	manifest TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	total_local INTEGER NOT NULL DEFAULT 0,
	added INTEGER NOT NULL DEFAULT 0,
	removed INTEGER NOT NULL DEFAULT 0,
	unchanged INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	blob_failures INTEGER NOT NULL DEFAULT 0,
	invalid INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`
