package semilinear

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"golang.org/x/crypto/blake2b"
)

// Cache memoizes the expensive semilinear operations (Star and Complement
// in particular — the latter is explicitly the most expensive step of the
// decision procedure) behind a content hash of their inputs, backed by an
// in-memory modernc.org/sqlite database rather than a plain Go map so the
// same cache can later be pointed at an on-disk DSN for cross-run reuse
// without changing any caller.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (and, for ":memory:", creates) the cache database. It
// opens in WAL mode, though WAL has
// no effect on an in-memory database — it's there so the same dial path
// works unchanged if dsn is later pointed at a file.
func OpenCache(dsn string) (*Cache, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open semilinear cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS semilinear_cache (
		op   TEXT NOT NULL,
		key  TEXT NOT NULL,
		val  TEXT NOT NULL,
		PRIMARY KEY (op, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// hashKey derives a stable cache key from an operation name and its
// operand(s)' canonical encodings. blake2b keeps the stored key short and
// fixed-width regardless of how large the encoded operands are.
func hashKey(parts ...string) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// encodeComponents renders a set's components only (no dimension), the
// form stored as the cache value — dim is already known from context when
// decoding, so it isn't duplicated into every row.
func encodeComponents(s Set) string {
	b := strings.Builder{}
	for _, c := range Normalize(s).Components {
		fmt.Fprintf(&b, "%v", []int(c.Base))
		for _, p := range c.Periods {
			fmt.Fprintf(&b, "+%v", []int(p))
		}
		b.WriteByte(';')
	}
	return b.String()
}

// encodeSet renders dimension and components together, used only for
// hash-key input so operands of different dimension never collide.
func encodeSet(s Set) string {
	return fmt.Sprintf("%d|%s", s.Dim, encodeComponents(s))
}

// Star returns alg.Star(x), computing it once per distinct x and reusing
// the cached result on every later call with an equal (post-normalization)
// operand.
func (c *Cache) Star(alg Algebra, x Set) Set {
	key := hashKey("star", encodeSet(x))
	if cached, ok := c.lookup("star", key, alg.Dim); ok {
		return cached
	}
	result := alg.Star(x)
	c.store("star", key, result)
	return result
}

// Complement returns Complement(x, dim, bound), memoized the same way.
func (c *Cache) Complement(x Set, dim, bound int) Set {
	key := hashKey("complement", encodeSet(x), fmt.Sprintf("%d|%d", dim, bound))
	if cached, ok := c.lookup("complement", key, dim); ok {
		return cached
	}
	result := Complement(x, dim, bound)
	c.store("complement", key, result)
	return result
}

func (c *Cache) lookup(op, key string, dim int) (Set, bool) {
	var val string
	err := c.db.QueryRow("SELECT val FROM semilinear_cache WHERE op = ? AND key = ?", op, key).Scan(&val)
	if err != nil {
		return Set{}, false
	}
	return decodeSet(val, dim), true
}

func (c *Cache) store(op, key string, s Set) {
	_, _ = c.db.Exec("INSERT OR REPLACE INTO semilinear_cache (op, key, val) VALUES (?, ?, ?)",
		op, key, encodeComponents(s))
}

func decodeSet(encoded string, dim int) Set {
	out := Set{Dim: dim}
	parts := strings.Split(encoded, ";")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		groups := strings.Split(part, "+")
		c := Component{Base: parseIntVec(groups[0])}
		for _, g := range groups[1:] {
			c.Periods = append(c.Periods, parseIntVec(g))
		}
		out.Components = append(out.Components, c)
	}
	return out
}

func parseIntVec(s string) Vector {
	s = strings.Trim(s, "[]")
	if s == "" {
		return Vector{}
	}
	fields := strings.Fields(s)
	v := make(Vector, len(fields))
	for i, f := range fields {
		fmt.Sscanf(f, "%d", &v[i])
	}
	return v
}
