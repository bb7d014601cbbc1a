package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// maxDepth caps relation expansion so cyclic references terminate.
const maxDepth = 3

type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ObjectStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS objects (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		slug TEXT NOT NULL,
		title TEXT,
		content TEXT,
		metadata JSON NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		modified_at TEXT NOT NULL,
		UNIQUE(type, slug)
	);
	CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);
	`
	_, err := db.Exec(query)
	return err
}

const selectObject = `SELECT id, type, slug, title, content, metadata, created_at, modified_at FROM objects`

func (r *SQLiteRepository) Find(ctx context.Context, q domain.Query) ([]domain.Object, error) {
	where, args := filter(q)
	query := selectObject + where + ` ORDER BY seq`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []domain.Object{}
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range objects {
		if err := r.expand(ctx, &objects[i], min(q.Depth, maxDepth)); err != nil {
			return nil, err
		}
	}
	return objects, nil
}

func (r *SQLiteRepository) FindOne(ctx context.Context, q domain.Query) (*domain.Object, error) {
	q.Limit = 1
	objects, err := r.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, domain.NewNotFound("object")
	}
	return &objects[0], nil
}

// UpdateOne replaces the supplied top-level metadata keys in one statement and
// leaves every other key untouched. There is no version check.
func (r *SQLiteRepository) UpdateOne(ctx context.Context, id string, metadata map[string]any) (*domain.Object, error) {
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		setExpr := "metadata"
		args := []any{}
		for _, k := range keys {
			value, err := json.Marshal(metadata[k])
			if err != nil {
				return nil, err
			}
			setExpr = fmt.Sprintf("json_set(%s, ?, json(?))", setExpr)
			args = append(args, jsonPath(k), string(value))
		}
		args = append(args, now(), id)

		res, err := r.db.ExecContext(ctx, `UPDATE objects SET metadata = `+setExpr+`, modified_at = ? WHERE id = ?`, args...)
		if err != nil {
			return nil, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, domain.NewNotFound("object")
		}
	}

	obj, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.NewNotFound("object")
	}
	return obj, nil
}

// Upsert inserts or replaces an object. Objects without an id reuse the id of
// an existing object with the same type and slug, or get a fresh uuid.
func (r *SQLiteRepository) Upsert(ctx context.Context, obj *domain.Object) error {
	if obj.Type == "" || obj.Slug == "" {
		return errors.New("object type and slug are required")
	}
	if obj.ID == "" {
		var existing string
		err := r.db.QueryRowContext(ctx, `SELECT id FROM objects WHERE type = ? AND slug = ?`, obj.Type, obj.Slug).Scan(&existing)
		switch {
		case err == nil:
			obj.ID = existing
		case errors.Is(err, sql.ErrNoRows):
			obj.ID = uuid.NewString()
		default:
			return err
		}
	}

	metadata := obj.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	ts := now()
	if obj.CreatedAt == "" {
		obj.CreatedAt = ts
	}
	obj.ModifiedAt = ts

	query := `INSERT INTO objects (id, type, slug, title, content, metadata, created_at, modified_at)
			  VALUES (?, ?, ?, ?, ?, json(?), ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
				type = excluded.type, slug = excluded.slug, title = excluded.title,
				content = excluded.content, metadata = excluded.metadata, modified_at = excluded.modified_at`
	_, err := r.db.ExecContext(ctx, query, obj.ID, obj.Type, obj.Slug, obj.Title, obj.Content, string(metadata), obj.CreatedAt, obj.ModifiedAt)
	return err
}

// Dump returns unexpanded objects, optionally of a single type. For export.
func (r *SQLiteRepository) Dump(ctx context.Context, objectType string) ([]domain.Object, error) {
	return r.Find(ctx, domain.Query{Type: objectType})
}

func (r *SQLiteRepository) getByID(ctx context.Context, id string) (*domain.Object, error) {
	row := r.db.QueryRowContext(ctx, selectObject+` WHERE id = ?`, id)
	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// expand replaces relation ids in metadata with the referenced objects, depth
// levels deep. Dangling ids are dropped.
func (r *SQLiteRepository) expand(ctx context.Context, obj *domain.Object, depth int) error {
	if depth <= 0 || len(obj.Metadata) == 0 {
		return nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(obj.Metadata, &metadata); err != nil {
		return nil // leave non-object metadata alone
	}

	changed := false
	for _, field := range domain.RelationFields {
		value, ok := metadata[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			related, err := r.related(ctx, v, depth-1)
			if err != nil {
				return err
			}
			if related == nil {
				metadata[field] = nil
			} else {
				metadata[field] = related
			}
			changed = true
		case []any:
			list := make([]any, 0, len(v))
			for _, item := range v {
				id, ok := item.(string)
				if !ok {
					list = append(list, item)
					continue
				}
				related, err := r.related(ctx, id, depth-1)
				if err != nil {
					return err
				}
				if related != nil {
					list = append(list, related)
				}
			}
			metadata[field] = list
			changed = true
		}
	}
	if !changed {
		return nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	obj.Metadata = raw
	return nil
}

func (r *SQLiteRepository) related(ctx context.Context, id string, depth int) (*domain.Object, error) {
	obj, err := r.getByID(ctx, id)
	if err != nil || obj == nil {
		return nil, err
	}
	if err := r.expand(ctx, obj, depth); err != nil {
		return nil, err
	}
	return obj, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(s scanner) (domain.Object, error) {
	var (
		obj      domain.Object
		title    sql.NullString
		content  sql.NullString
		metadata []byte
	)
	if err := s.Scan(&obj.ID, &obj.Type, &obj.Slug, &title, &content, &metadata, &obj.CreatedAt, &obj.ModifiedAt); err != nil {
		return obj, err
	}
	obj.Title = title.String
	obj.Content = content.String
	obj.Metadata = json.RawMessage(metadata)
	return obj, nil
}

func filter(q domain.Query) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, q.Type)
	}
	if q.Slug != "" {
		clauses = append(clauses, "slug = ?")
		args = append(args, q.Slug)
	}
	if q.ID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, q.ID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
