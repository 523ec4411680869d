package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    project_dir     TEXT NOT NULL,
    session_id      TEXT NOT NULL,
    signature       TEXT NOT NULL,
    first_ts        TEXT,
    last_ts         TEXT,
    duration        TEXT,
    workflow        TEXT,
    story           TEXT,
    first_user_msg  TEXT,
    parent_msgs     INTEGER,
    parent_cost     REAL,
    total_cost      REAL,
    task_calls      TEXT,
    analyzed_at     TEXT NOT NULL,
    PRIMARY KEY (project_dir, session_id)
);

CREATE TABLE IF NOT EXISTS session_models (
    project_dir     TEXT NOT NULL,
    session_id      TEXT NOT NULL,
    scope           TEXT NOT NULL,
    model           TEXT NOT NULL,
    input_tokens    INTEGER,
    output_tokens   INTEGER,
    cache_5m        INTEGER,
    cache_1h        INTEGER,
    cache_read      INTEGER,
    messages        INTEGER,
    PRIMARY KEY (project_dir, session_id, scope, model),
    FOREIGN KEY (project_dir, session_id) REFERENCES sessions(project_dir, session_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS session_subagents (
    project_dir     TEXT NOT NULL,
    session_id      TEXT NOT NULL,
    ord             INTEGER NOT NULL,
    file            TEXT NOT NULL,
    first_msg       TEXT,
    models          TEXT,
    msg_count       INTEGER,
    cost            REAL,
    PRIMARY KEY (project_dir, session_id, ord),
    FOREIGN KEY (project_dir, session_id) REFERENCES sessions(project_dir, session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_first_ts ON sessions(first_ts);
`
