package store

const createTableSQL = `
CREATE TABLE IF NOT EXISTS reports (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT NOT NULL DEFAULT '',
    hostname        TEXT NOT NULL,
    system_uuid     TEXT NOT NULL DEFAULT '',
    system_serial   TEXT NOT NULL DEFAULT '',
    format          TEXT NOT NULL,
    digest          TEXT NOT NULL,
    unknown_classes TEXT NOT NULL DEFAULT '',
    collected_at    TEXT NOT NULL,
    stored_at       TEXT NOT NULL,
    data            BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_hostname ON reports(hostname);
CREATE INDEX IF NOT EXISTS idx_reports_system_uuid ON reports(system_uuid);
CREATE INDEX IF NOT EXISTS idx_reports_collected_at ON reports(collected_at);
CREATE INDEX IF NOT EXISTS idx_reports_digest ON reports(digest);
`
