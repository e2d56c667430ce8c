package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type Threat struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Categories  []string  `json:"categories"`
	Level       int       `json:"level"`
	Resolution  *string   `json:"resolution"`
	CreatedAt   time.Time `json:"created_at"`
}

type ThreatFilter struct {
	Status   string
	StatusIn []string
}

type ThreatsStore interface {
	CreateThreat(ctx context.Context, t *Threat) (int64, error)
	// UpdateThreat overwrites the mutable fields and reports rows affected;
	// zero means the id did not match any row.
	UpdateThreat(ctx context.Context, t *Threat) (int64, error)
	GetThreat(ctx context.Context, id int64) (*Threat, error)
	ListThreats(ctx context.Context, filter ThreatFilter) ([]Threat, error)
}

type threatsStore struct {
	db *sql.DB
}

func NewThreatsStore(db *sql.DB) ThreatsStore {
	return &threatsStore{db: db}
}

func (s *threatsStore) CreateThreat(ctx context.Context, t *Threat) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO threats(username, name, description, status, categories, level, resolution, created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(t.Username), strings.TrimSpace(t.Name), strings.TrimSpace(t.Description),
		t.Status, categoriesToJSON(t.Categories), t.Level, nullableText(t.Resolution), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	t.ID = id
	t.CreatedAt = now
	t.Categories = NormalizeCategories(t.Categories)
	return id, nil
}

func (s *threatsStore) UpdateThreat(ctx context.Context, t *Threat) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE threats SET username=?, name=?, description=?, status=?, categories=?, level=?, resolution=?
		WHERE id=?`,
		strings.TrimSpace(t.Username), strings.TrimSpace(t.Name), strings.TrimSpace(t.Description),
		t.Status, categoriesToJSON(t.Categories), t.Level, nullableText(t.Resolution), t.ID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (s *threatsStore) GetThreat(ctx context.Context, id int64) (*Threat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, name, description, status, categories, level, resolution, created_at
		FROM threats WHERE id=?`, id)
	return scanThreat(row)
}

func (s *threatsStore) ListThreats(ctx context.Context, filter ThreatFilter) ([]Threat, error) {
	var clauses []string
	var args []any
	if len(filter.StatusIn) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(filter.StatusIn)), ",")
		clauses = append(clauses, "status IN ("+placeholders+")")
		for _, val := range filter.StatusIn {
			args = append(args, val)
		}
	} else if filter.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, filter.Status)
	}
	query := `SELECT id, username, name, description, status, categories, level, resolution, created_at FROM threats`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Threat{}
	for rows.Next() {
		t, err := scanThreatRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func scanThreat(row *sql.Row) (*Threat, error) {
	var t Threat
	var resolution sql.NullString
	var catsRaw string
	if err := row.Scan(&t.ID, &t.Username, &t.Name, &t.Description, &t.Status, &catsRaw, &t.Level, &resolution, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if resolution.Valid {
		t.Resolution = &resolution.String
	}
	t.Categories = categoriesFromJSON(catsRaw)
	return &t, nil
}

func scanThreatRow(rows *sql.Rows) (Threat, error) {
	var t Threat
	var resolution sql.NullString
	var catsRaw string
	if err := rows.Scan(&t.ID, &t.Username, &t.Name, &t.Description, &t.Status, &catsRaw, &t.Level, &resolution, &t.CreatedAt); err != nil {
		return t, err
	}
	if resolution.Valid {
		t.Resolution = &resolution.String
	}
	t.Categories = categoriesFromJSON(catsRaw)
	return t, nil
}

// NormalizeCategories trims and dedupes while preserving first-seen order;
// the column is a list on disk but a set in the domain.
func NormalizeCategories(cats []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, raw := range cats {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

func categoriesToJSON(cats []string) string {
	b, err := json.Marshal(NormalizeCategories(cats))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// categoriesFromJSON is deliberately lenient: a corrupt or empty column reads
// back as no categories rather than failing the whole row.
func categoriesFromJSON(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var cats []string
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return []string{}
	}
	return NormalizeCategories(cats)
}

func nullableText(v *string) any {
	if v == nil {
		return nil
	}
	val := strings.TrimSpace(*v)
	if val == "" {
		return nil
	}
	return val
}
