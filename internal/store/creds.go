package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"taskdeck-cli/internal/model"
)

// Credentials are the three durable entries that survive process
// restarts: token, authenticated subject id, and role. They are written
// on successful login/register and erased atomically on logout.
type Credentials struct {
	Token     string
	SubjectID string
	Role      model.Role
}

func (c Credentials) Empty() bool { return strings.TrimSpace(c.Token) == "" }

// ConfigDir resolves the directory holding local client state.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.taskdeck).
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

// CredStore persists Credentials in a small sqlite key/value table under
// the config dir. The db is opened per operation and closed right after;
// there is no long-lived handle to leak across commands.
type CredStore struct {
	Dir string
}

func NewCredStore(dir string) CredStore { return CredStore{Dir: dir} }

func (s CredStore) path() string { return filepath.Join(s.Dir, "state.sqlite") }

const (
	credKeyToken   = "token"
	credKeySubject = "subject_id"
	credKeyRole    = "role"
)

func (s CredStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS credentials (k TEXT PRIMARY KEY, v TEXT NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Load reads the persisted credential. ok is false when no credential is
// stored (first run, or after logout).
func (s CredStore) Load(ctx context.Context) (creds Credentials, ok bool, err error) {
	if _, statErr := os.Stat(s.path()); statErr != nil {
		if os.IsNotExist(statErr) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, statErr
	}

	db, err := s.open(ctx)
	if err != nil {
		return Credentials{}, false, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT k, v FROM credentials`)
	if err != nil {
		return Credentials{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Credentials{}, false, err
		}
		switch k {
		case credKeyToken:
			creds.Token = v
		case credKeySubject:
			creds.SubjectID = v
		case credKeyRole:
			creds.Role = model.Role(v)
		}
	}
	if err := rows.Err(); err != nil {
		return Credentials{}, false, err
	}
	return creds, !creds.Empty(), nil
}

// Save writes all three entries in one transaction.
func (s CredStore) Save(ctx context.Context, creds Credentials) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range map[string]string{
		credKeyToken:   creds.Token,
		credKeySubject: creds.SubjectID,
		credKeyRole:    string(creds.Role),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO credentials(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear erases the persisted credential atomically.
func (s CredStore) Clear(ctx context.Context) error {
	if _, err := os.Stat(s.path()); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM credentials`)
	return err
}
