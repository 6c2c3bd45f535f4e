// Package resultcache memoizes Decision results in a migration-versioned
// SQLite database: the embedded migrations/*.sql files are applied in
// name order, each in its own transaction, and recorded in
// schema_migrations. Re-checking an unchanged program against an
// unchanged oracle/solver pair is wasted subprocess work.
package resultcache

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sercheck/ser/internal/orchestrator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", f).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", f, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", f); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", f, err)
		}
	}
	return nil
}

// Key derives the cache key for one (source, bound) pair — the same pair
// that determines checkCompiled's entire output, given a fixed oracle/SMT
// binary.
func Key(source string, bound int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", bound, source)))
	return hex.EncodeToString(h[:])
}

// Get returns the cached Decision for key, or ok=false on a miss.
func (s *Store) Get(key string) (dec orchestrator.Decision, ok bool, err error) {
	var verdict string
	var witnessJSON, rawProof sql.NullString
	var elapsedMS int64

	row := s.db.QueryRow(`SELECT verdict, witness_json, raw_proof, elapsed_ms FROM decisions WHERE key = ?`, key)
	if err := row.Scan(&verdict, &witnessJSON, &rawProof, &elapsedMS); err != nil {
		if err == sql.ErrNoRows {
			return orchestrator.Decision{}, false, nil
		}
		return orchestrator.Decision{}, false, fmt.Errorf("query decision: %w", err)
	}

	dec.Verdict = parseVerdict(verdict)
	dec.Elapsed = 0
	if witnessJSON.Valid && witnessJSON.String != "" {
		var witness map[string]int
		if err := json.Unmarshal([]byte(witnessJSON.String), &witness); err != nil {
			return orchestrator.Decision{}, false, fmt.Errorf("decode cached witness: %w", err)
		}
		dec.Certificate = &orchestrator.Certificate{
			Witness:      witness,
			ObligationOK: true,
			RawProof:     rawProof.String,
		}
	}
	return dec, true, nil
}

// Put stores dec under key, overwriting any existing entry.
func (s *Store) Put(key string, dec orchestrator.Decision) error {
	var witnessJSON, rawProof string
	if dec.Certificate != nil {
		data, err := json.Marshal(dec.Certificate.Witness)
		if err != nil {
			return fmt.Errorf("encode witness: %w", err)
		}
		witnessJSON = string(data)
		rawProof = dec.Certificate.RawProof
	}
	_, err := s.db.Exec(
		`INSERT INTO decisions (key, verdict, witness_json, raw_proof, elapsed_ms) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET verdict=excluded.verdict, witness_json=excluded.witness_json,
		   raw_proof=excluded.raw_proof, elapsed_ms=excluded.elapsed_ms, cached_at=CURRENT_TIMESTAMP`,
		key, dec.Verdict.String(), witnessJSON, rawProof, dec.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("upsert decision: %w", err)
	}
	return nil
}

func parseVerdict(s string) orchestrator.Verdict {
	switch s {
	case "serializable":
		return orchestrator.Serializable
	case "not serializable":
		return orchestrator.NotSerializable
	case "timeout":
		return orchestrator.VerdictTimeout
	default:
		return orchestrator.VerdictUnknown
	}
}
