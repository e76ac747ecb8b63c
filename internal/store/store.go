// Package store is the persistence layer: a single append-only jobs table
// over SQLite (default, embedded) or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jobradar/go-jobboard/internal/domain"
)

// Store persists and queries job postings.
type Store struct {
	db *sql.DB
	d  dialect
}

// Open connects to the database for the given driver ("sqlite" or
// "postgres"), creating the schema if needed.
func Open(driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d.maxOpenConns > 0 {
		db.SetMaxOpenConns(d.maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &Store{db: db, d: d}
	if err := s.ensureTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureTable() error {
	_, err := s.db.Exec(s.d.schema)
	return err
}

// serialAttempts bounds the retries when concurrent saves race for the
// same serial suffix.
const serialAttempts = 5

// Save inserts a posting, assigning the next serial for the current year.
// Saving a link that already exists is a no-op, not an error. Save is safe
// to call from concurrent workers: SQLite writers serialize over the
// single-connection pool, and under postgres two transactions that read
// the same max suffix collide on the serial unique constraint and the
// loser retries with a fresh read.
func (s *Store) Save(ctx context.Context, p *domain.Posting) error {
	var err error
	for attempt := 0; attempt < serialAttempts; attempt++ {
		if err = s.save(ctx, p); !isSerialConflict(err) {
			return err
		}
	}
	return err
}

func (s *Store) save(ctx context.Context, p *domain.Posting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	year := time.Now().Year()
	prefix := fmt.Sprintf("JOB-%d-%%", year)

	var maxSuffix sql.NullInt64
	query := fmt.Sprintf(
		`SELECT MAX(CAST(%s AS INTEGER)) FROM jobs WHERE serial LIKE ?`,
		s.d.serialSuffix,
	)
	if err := tx.QueryRowContext(ctx, s.d.rebind(query), prefix).Scan(&maxSuffix); err != nil {
		return fmt.Errorf("read max serial: %w", err)
	}

	serial := fmt.Sprintf("JOB-%d-%04d", year, maxSuffix.Int64+1)

	insert := fmt.Sprintf(`INSERT INTO jobs (
		serial, title, company_name, location, job_type, salary_range,
		link, platform_url, source_domain, snippet, published_date, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) %s`, s.d.ignoreConflict)

	_, err = tx.ExecContext(ctx, s.d.rebind(insert),
		serial, p.Title, p.CompanyName, p.Location, p.JobType, p.SalaryRange,
		p.Link, nullString(p.PlatformURL), p.SourceDomain, p.Snippet,
		nullTime(p.PublishedDate), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}

	return tx.Commit()
}

// isSerialConflict reports whether err is a postgres unique violation on
// the serial column, the losing side of a concurrent suffix race.
func isSerialConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "jobs_serial_key"
}

// Count returns the total number of stored postings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// Search returns one page of postings whose title, company name, or
// location contains term (case-insensitive). An empty term matches
// everything. Results order by published date descending (nulls last),
// then creation time descending.
func (s *Store) Search(ctx context.Context, term string, page, limit int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	where := ""
	var args []any
	if term != "" {
		pattern := "%" + term + "%"
		where = fmt.Sprintf(
			` WHERE title %[1]s ? OR company_name %[1]s ? OR location %[1]s ?`,
			s.d.likeOp,
		)
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	countQuery := s.d.rebind(`SELECT COUNT(*) FROM jobs` + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.Page{}, fmt.Errorf("count matches: %w", err)
	}

	query := s.d.rebind(selectColumns + where + s.d.orderBy + ` LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := scanPostings(rows)
	if err != nil {
		return domain.Page{}, err
	}

	totalPages := (total + limit - 1) / limit
	return domain.Page{
		Jobs: jobs,
		Pagination: domain.Pagination{
			Total:       total,
			TotalPages:  totalPages,
			CurrentPage: page,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
			Limit:       limit,
		},
	}, nil
}

// All returns every stored posting, newest first. Used by the admin view.
func (s *Store) All(ctx context.Context) ([]domain.Posting, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+s.d.orderBy)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()
	return scanPostings(rows)
}

const selectColumns = `SELECT id, serial, title, company_name, location, job_type,
	salary_range, link, COALESCE(platform_url, ''), source_domain, snippet,
	published_date, created_at FROM jobs`

func scanPostings(rows *sql.Rows) ([]domain.Posting, error) {
	jobs := []domain.Posting{}
	for rows.Next() {
		var (
			p         domain.Posting
			published sql.NullTime
		)
		if err := rows.Scan(
			&p.ID, &p.Serial, &p.Title, &p.CompanyName, &p.Location, &p.JobType,
			&p.SalaryRange, &p.Link, &p.PlatformURL, &p.SourceDomain, &p.Snippet,
			&published, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		if published.Valid {
			p.PublishedDate = published.Time
		}
		jobs = append(jobs, p)
	}
	return jobs, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// dialect captures the SQL differences between the two supported backends.
type dialect struct {
	driverName     string
	schema         string
	ignoreConflict string
	serialSuffix   string
	likeOp         string
	orderBy        string
	numbered       bool
	// 0 leaves the pool unbounded
	maxOpenConns int
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite":
		return dialect{
			driverName:     "sqlite",
			schema:         sqliteSchema,
			ignoreConflict: "ON CONFLICT (link) DO NOTHING",
			serialSuffix:   "SUBSTR(serial, -4)",
			likeOp:         "LIKE",
			// SQLite sorts NULL below every value, so DESC already puts
			// unknown dates last.
			orderBy:  " ORDER BY published_date DESC, created_at DESC",
			numbered: false,
			// A second connection opening a write transaction gets
			// SQLITE_BUSY rather than blocking; one connection makes
			// writers queue instead.
			maxOpenConns: 1,
		}, nil
	case "postgres":
		return dialect{
			driverName:     "postgres",
			schema:         postgresSchema,
			ignoreConflict: "ON CONFLICT (link) DO NOTHING",
			serialSuffix:   "RIGHT(serial, 4)",
			likeOp:         "ILIKE",
			orderBy:        " ORDER BY published_date DESC NULLS LAST, created_at DESC",
			numbered:       true,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// rebind converts ?-style placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    serial         TEXT UNIQUE,
    title          TEXT,
    company_name   TEXT,
    location       TEXT,
    job_type       TEXT,
    salary_range   TEXT,
    link           TEXT UNIQUE,
    platform_url   TEXT UNIQUE,
    source_domain  TEXT,
    snippet        TEXT,
    published_date TIMESTAMP,
    created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_jobs_published ON jobs(published_date);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id             BIGSERIAL PRIMARY KEY,
    serial         TEXT UNIQUE,
    title          TEXT,
    company_name   TEXT,
    location       TEXT,
    job_type       TEXT,
    salary_range   TEXT,
    link           TEXT UNIQUE,
    platform_url   TEXT UNIQUE,
    source_domain  TEXT,
    snippet        TEXT,
    published_date TIMESTAMP WITH TIME ZONE,
    created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_published ON jobs(published_date);
`
