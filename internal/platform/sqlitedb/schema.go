package sqlitedb

// SchemaSQL is the embedded-store equivalent of migrations/*.sql. Times are
// declared DATETIME/DATE so the driver hands them back as time.Time.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS call (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL,
    label               TEXT NOT NULL,
    scheduled           DATE NOT NULL,
    repeats             BOOLEAN NOT NULL DEFAULT 0,
    call_attempts       INTEGER NOT NULL DEFAULT 0,
    call_status         TEXT NOT NULL DEFAULT 'NEW',
    first_called        DATETIME,
    last_called         DATETIME,
    call_outcome        TEXT,
    created             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_created        TEXT NOT NULL DEFAULT '',
    user_modified       TEXT NOT NULL DEFAULT '',
    hostname_created    TEXT NOT NULL DEFAULT '',
    hostname_modified   TEXT NOT NULL DEFAULT '',
    revision            TEXT NOT NULL DEFAULT '',
    site_id             TEXT NOT NULL DEFAULT '',
    UNIQUE (subject_identifier, label, scheduled)
);

CREATE TABLE IF NOT EXISTS log (
    id                   TEXT PRIMARY KEY,
    call_id              TEXT NOT NULL REFERENCES call(id) ON DELETE CASCADE,
    log_datetime         DATETIME NOT NULL,
    locator_information  TEXT,
    contact_notes        TEXT,
    created              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_created         TEXT NOT NULL DEFAULT '',
    user_modified        TEXT NOT NULL DEFAULT '',
    hostname_created     TEXT NOT NULL DEFAULT '',
    hostname_modified    TEXT NOT NULL DEFAULT '',
    revision             TEXT NOT NULL DEFAULT '',
    site_id              TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS log_entry (
    id                           TEXT PRIMARY KEY,
    log_id                       TEXT NOT NULL REFERENCES log(id) ON DELETE CASCADE,
    subject_identifier           TEXT NOT NULL,
    call_datetime                DATETIME NOT NULL,
    phone_num_type               TEXT NOT NULL DEFAULT '[]',
    phone_num_success            TEXT NOT NULL DEFAULT '[]',
    cell_contact_fail            TEXT NOT NULL DEFAULT 'N/A',
    alt_cell_contact_fail        TEXT NOT NULL DEFAULT 'N/A',
    tel_contact_fail             TEXT NOT NULL DEFAULT 'N/A',
    alt_tel_contact_fail         TEXT NOT NULL DEFAULT 'N/A',
    work_contact_fail            TEXT NOT NULL DEFAULT 'N/A',
    cell_alt_contact_fail        TEXT NOT NULL DEFAULT 'N/A',
    tel_alt_contact_fail         TEXT NOT NULL DEFAULT 'N/A',
    appt                         TEXT NOT NULL DEFAULT 'N/A',
    appt_reason_unwilling        TEXT NOT NULL DEFAULT 'N/A',
    appt_reason_unwilling_other  TEXT,
    appt_date                    DATE,
    appt_grading                 TEXT NOT NULL DEFAULT 'N/A',
    appt_location                TEXT NOT NULL DEFAULT 'N/A',
    appt_location_other          TEXT,
    may_call                     TEXT NOT NULL DEFAULT 'N/A',
    home_visit                   TEXT NOT NULL DEFAULT 'N/A',
    home_visit_other             TEXT,
    created                      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified                     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_created                 TEXT NOT NULL DEFAULT '',
    user_modified                TEXT NOT NULL DEFAULT '',
    hostname_created             TEXT NOT NULL DEFAULT '',
    hostname_modified            TEXT NOT NULL DEFAULT '',
    revision                     TEXT NOT NULL DEFAULT '',
    site_id                      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS work_list (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL,
    report_datetime     DATETIME NOT NULL,
    is_called           TEXT NOT NULL DEFAULT 'No',
    called_datetime     DATETIME,
    visited             TEXT NOT NULL DEFAULT 'No',
    village_town        TEXT,
    created             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_created        TEXT NOT NULL DEFAULT '',
    user_modified       TEXT NOT NULL DEFAULT '',
    hostname_created    TEXT NOT NULL DEFAULT '',
    hostname_modified   TEXT NOT NULL DEFAULT '',
    revision            TEXT NOT NULL DEFAULT '',
    site_id             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS navigation_work_list (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL UNIQUE,
    report_datetime     DATETIME NOT NULL,
    is_called           TEXT NOT NULL DEFAULT 'No',
    called_datetime     DATETIME,
    visited             TEXT NOT NULL DEFAULT 'No',
    village_town        TEXT,
    created             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    user_created        TEXT NOT NULL DEFAULT '',
    user_modified       TEXT NOT NULL DEFAULT '',
    hostname_created    TEXT NOT NULL DEFAULT '',
    hostname_modified   TEXT NOT NULL DEFAULT '',
    revision            TEXT NOT NULL DEFAULT '',
    site_id             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS subject_locator (
    subject_identifier      TEXT PRIMARY KEY,
    subject_cell            TEXT,
    subject_cell_alt        TEXT,
    subject_phone           TEXT,
    subject_phone_alt       TEXT,
    subject_work_phone      TEXT,
    indirect_contact_cell   TEXT,
    indirect_contact_phone  TEXT,
    village_town            TEXT
);

CREATE TABLE IF NOT EXISTS subject_visit (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL,
    visit_code          TEXT NOT NULL,
    report_datetime     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS baseline_clinical_summary (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL,
    team_discussion     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS navigation_summary_and_plan (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS clinician_call_enrollment (
    id                  TEXT PRIMARY KEY,
    subject_identifier  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS onschedule (
    subject_identifier  TEXT PRIMARY KEY,
    community_arm       TEXT
);
`
