package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, q *Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	aj, err := json.Marshal(emptyAttempts(q.Attempts))
	if err != nil {
		return err
	}
	q.CreatedAt = time.Now()
	q.Version = 0
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id, title, subject, description, time_limit_min, difficulty, is_public,
		 created_by, questions_json, attempts_json, version, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		q.ID, q.Title, q.Subject, q.Description, q.TimeLimitMin, q.Difficulty,
		boolToInt(q.IsPublic), q.CreatedBy, string(qj), string(aj), q.Version,
		q.CreatedAt.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, subject, description,
		time_limit_min, difficulty, is_public, created_by, questions_json,
		attempts_json, version, created_at FROM quizzes WHERE id=$1`, id)
	q, err := scanQuiz(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) Update(ctx context.Context, q *Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	aj, err := json.Marshal(emptyAttempts(q.Attempts))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET
		title=$1, subject=$2, description=$3, time_limit_min=$4, difficulty=$5,
		is_public=$6, questions_json=$7, attempts_json=$8, version=$9
		WHERE id=$10 AND version=$11`,
		q.Title, q.Subject, q.Description, q.TimeLimitMin, q.Difficulty,
		boolToInt(q.IsPublic), string(qj), string(aj), q.Version+1,
		q.ID, q.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.Get(ctx, q.ID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	q.Version++
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Quiz, error) {
	query := `SELECT id, title, subject, description, time_limit_min, difficulty,
		is_public, created_by, questions_json, attempts_json, version, created_at
		FROM quizzes WHERE 1=1`
	args := []any{}
	n := 0
	add := func(cond string, v any) {
		n++
		query += cond + placeholder(n)
		args = append(args, v)
	}
	if opts.PublicOnly {
		add(` AND is_public=`, 1)
	}
	if opts.Subject != "" && opts.Subject != "all" {
		add(` AND subject=`, opts.Subject)
	}
	if opts.Difficulty != "" && opts.Difficulty != "all" {
		add(` AND difficulty=`, opts.Difficulty)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		add(` LIMIT `, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT subject FROM quizzes ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanQuiz(row scanner, withAttempts bool) (Quiz, error) {
	var (
		q       Quiz
		qjson   string
		ajson   string
		public  int
		created int64
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Subject, &q.Description,
		&q.TimeLimitMin, &q.Difficulty, &public, &q.CreatedBy,
		&qjson, &ajson, &q.Version, &created); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	if withAttempts {
		if err := json.Unmarshal([]byte(ajson), &q.Attempts); err != nil {
			q.Attempts = nil
		}
	}
	q.IsPublic = public != 0
	q.CreatedAt = time.Unix(created, 0)
	return q, nil
}

func emptyAttempts(a []Attempt) []Attempt {
	if a == nil {
		return []Attempt{}
	}
	return a
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholder(n int) string {
	// $N works for both pgx and modernc sqlite
	return "$" + strconv.Itoa(n)
}
