package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("note not found")

type ListOpts struct {
	Subject string // empty or "all" means no filter
	Search  string // substring match on title/description
	Limit   int
}

type Store interface {
	Put(ctx context.Context, n *Note) error
	Get(ctx context.Context, id string) (Note, error)
	List(ctx context.Context, opts ListOpts) ([]Note, error)
	Delete(ctx context.Context, id string) error

	// IncrementDownloads bumps the counter atomically in the store; the
	// download path must not lose counts under concurrent fetches.
	IncrementDownloads(ctx context.Context, id string) error

	// ToggleLike adds userID to the like list, or removes it when present.
	// Returns the new like count.
	ToggleLike(ctx context.Context, id, userID string) (int, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, n *Note) error {
	tj, err := json.Marshal(emptySlice(n.Tags))
	if err != nil {
		return err
	}
	lj, err := json.Marshal(emptySlice(n.Likes))
	if err != nil {
		return err
	}
	n.CreatedAt = time.Now()
	_, err = s.db.ExecContext(ctx, `INSERT INTO notes
		(id, title, subject, description, file_key, file_name, file_type,
		 uploaded_by, tags_json, downloads, likes_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		n.ID, n.Title, n.Subject, n.Description, n.FileKey, n.FileName, n.FileType,
		n.UploadedBy, string(tj), n.Downloads, string(lj), n.CreatedAt.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, subject, description,
		file_key, file_name, file_type, uploaded_by, tags_json, downloads,
		likes_json, created_at FROM notes WHERE id=$1`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Note, error) {
	query := `SELECT id, title, subject, description, file_key, file_name,
		file_type, uploaded_by, tags_json, downloads, likes_json, created_at
		FROM notes WHERE 1=1`
	args := []any{}
	if opts.Subject != "" && opts.Subject != "all" {
		args = append(args, opts.Subject)
		query += ` AND subject=$` + strconv.Itoa(len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		p := strconv.Itoa(len(args))
		query += ` AND (LOWER(title) LIKE $` + p + ` OR LOWER(description) LIKE $` + p + `)`
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) IncrementDownloads(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET downloads=downloads+1 WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ToggleLike(ctx context.Context, id, userID string) (int, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if n.LikedBy(userID) {
		kept := n.Likes[:0]
		for _, uid := range n.Likes {
			if uid != userID {
				kept = append(kept, uid)
			}
		}
		n.Likes = kept
	} else {
		n.Likes = append(n.Likes, userID)
	}
	lj, err := json.Marshal(emptySlice(n.Likes))
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE notes SET likes_json=$1 WHERE id=$2`, string(lj), id); err != nil {
		return 0, err
	}
	return len(n.Likes), nil
}

type scanner interface{ Scan(dest ...any) error }

func scanNote(row scanner) (Note, error) {
	var (
		n       Note
		tags    string
		likes   string
		created int64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Subject, &n.Description,
		&n.FileKey, &n.FileName, &n.FileType, &n.UploadedBy, &tags,
		&n.Downloads, &likes, &created); err != nil {
		return Note{}, err
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		n.Tags = nil
	}
	if err := json.Unmarshal([]byte(likes), &n.Likes); err != nil {
		n.Likes = nil
	}
	n.CreatedAt = time.Unix(created, 0)
	return n, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

