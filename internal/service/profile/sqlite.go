package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/janisto/echo-cards/internal/service/profile/migrations"
)

const cardColumns = `slug, name, company, role, bio, phone_mobile, phone_office,
	emails, websites, addresses,
	facebook, instagram, linkedin, tiktok, telegram, whatsapp,
	pec, vat_number, sdi_code, notes, photo_url, documents, gallery,
	created_at, updated_at`

// SQLiteStore implements Repository on a SQLite database.
//
// The pool holds a single connection and transactions begin IMMEDIATE, so
// writers are serialized; the slug primary key backs the uniqueness check.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database file at path and applies migrations.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

// ApplyMigrations applies pending embedded schema migrations.
func (s *SQLiteStore) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, committing on success.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Create(ctx context.Context, p *Profile) (*Profile, error) {
	next, err := prepareCreate(p)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO cards (` + cardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, rowArgs(next)...); err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert card: %w", err)
	}

	return next, nil
}

func (s *SQLiteStore) Get(ctx context.Context, slug string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE slug = ?`, NormalizeSlug(slug))
	p, err := scanCard(row)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

func (s *SQLiteStore) Update(ctx context.Context, slug string, mutate func(*Profile) error) (*Profile, error) {
	key := NormalizeSlug(slug)

	var result *Profile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE slug = ?`, key)
		current, err := scanCard(row)
		if err != nil {
			return mapNotFound(err)
		}

		next, err := applyUpdate(current, mutate)
		if err != nil {
			return err
		}

		if next.Slug != key {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE slug = ?`, next.Slug).Scan(&exists)
			if err == nil {
				return ErrDuplicateSlug
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
		}

		query := `UPDATE cards SET
			slug = ?, name = ?, company = ?, role = ?, bio = ?, phone_mobile = ?, phone_office = ?,
			emails = ?, websites = ?, addresses = ?,
			facebook = ?, instagram = ?, linkedin = ?, tiktok = ?, telegram = ?, whatsapp = ?,
			pec = ?, vat_number = ?, sdi_code = ?, notes = ?, photo_url = ?, documents = ?, gallery = ?,
			created_at = ?, updated_at = ?
			WHERE slug = ?`
		args := append(rowArgs(next), key)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isConstraintViolation(err) {
				return ErrDuplicateSlug
			}
			return fmt.Errorf("update card: %w", err)
		}

		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, slug string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE slug = ?`, NormalizeSlug(slug))
	if err != nil {
		return false, fmt.Errorf("delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Profile
	for rows.Next() {
		p, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func rowArgs(p *Profile) []any {
	return []any{
		p.Slug, p.Name, p.Company, p.Role, p.Bio, p.PhoneMobile, p.PhoneOffice,
		JoinList(p.Emails, ListSeparator),
		JoinList(p.Websites, ListSeparator),
		JoinList(p.Addresses, LineSeparator),
		p.Social.Facebook, p.Social.Instagram, p.Social.LinkedIn,
		p.Social.TikTok, p.Social.Telegram, p.Social.WhatsApp,
		p.PEC, p.VATNumber, p.SDICode, p.Notes, p.PhotoURL,
		JoinList(p.Documents, LineSeparator),
		JoinList(p.Gallery, LineSeparator),
		p.CreatedAt.Format(time.RFC3339Nano),
		p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*Profile, error) {
	var (
		p                                    Profile
		emails, websites, addresses          string
		documents, gallery, created, updated string
	)
	err := row.Scan(
		&p.Slug, &p.Name, &p.Company, &p.Role, &p.Bio, &p.PhoneMobile, &p.PhoneOffice,
		&emails, &websites, &addresses,
		&p.Social.Facebook, &p.Social.Instagram, &p.Social.LinkedIn,
		&p.Social.TikTok, &p.Social.Telegram, &p.Social.WhatsApp,
		&p.PEC, &p.VATNumber, &p.SDICode, &p.Notes, &p.PhotoURL,
		&documents, &gallery, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	p.Emails = SplitList(emails, ListSeparator)
	p.Websites = SplitList(websites, ListSeparator)
	p.Addresses = SplitList(addresses, LineSeparator)
	p.Documents = splitRefs(documents)
	p.Gallery = splitRefs(gallery)

	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &p, nil
}

// splitRefs keeps empty entries so slot positions survive a roundtrip.
func splitRefs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, LineSeparator)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

var _ Repository = (*SQLiteStore)(nil)
