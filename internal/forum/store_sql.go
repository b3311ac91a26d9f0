package forum

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("question not found")
	ErrForbidden = errors.New("not the question owner")
)

type Store interface {
	Ask(ctx context.Context, q *Question) error

	// Get returns the question and bumps its view counter.
	Get(ctx context.Context, id string) (Question, error)

	List(ctx context.Context, limit int) ([]Question, error)
	AddAnswer(ctx context.Context, questionID string, a Answer) error

	// Vote applies delta (+1 / -1) to the question and returns the new total.
	Vote(ctx context.Context, questionID string, delta int) (int, error)

	// AcceptAnswer marks one answer accepted; only the asker may accept.
	AcceptAnswer(ctx context.Context, questionID, answerID, byUserID string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Ask(ctx context.Context, q *Question) error {
	tj, err := json.Marshal(emptyTags(q.Tags))
	if err != nil {
		return err
	}
	aj, err := json.Marshal(emptyAnswers(q.Answers))
	if err != nil {
		return err
	}
	q.CreatedAt = time.Now()
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions
		(id, title, content, subject, tags_json, asked_by, answers_json, votes, views, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		q.ID, q.Title, q.Content, q.Subject, string(tj), q.AskedBy, string(aj),
		q.Votes, q.Views, q.CreatedAt.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Question, error) {
	// view counter first so the returned document reflects this read
	if _, err := s.db.ExecContext(ctx, `UPDATE questions SET views=views+1 WHERE id=$1`, id); err != nil {
		return Question{}, err
	}
	return s.get(ctx, id)
}

func (s *SQLStore) get(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content, subject, tags_json,
		asked_by, answers_json, votes, views, created_at FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]Question, error) {
	query := `SELECT id, title, content, subject, tags_json, asked_by,
		answers_json, votes, views, created_at FROM questions ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddAnswer(ctx context.Context, questionID string, a Answer) error {
	q, err := s.get(ctx, questionID)
	if err != nil {
		return err
	}
	a.CreatedAt = time.Now()
	q.Answers = append(q.Answers, a)
	return s.writeAnswers(ctx, questionID, q.Answers)
}

func (s *SQLStore) Vote(ctx context.Context, questionID string, delta int) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET votes=votes+$1 WHERE id=$2`, delta, questionID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	var votes int
	if err := s.db.QueryRowContext(ctx, `SELECT votes FROM questions WHERE id=$1`, questionID).Scan(&votes); err != nil {
		return 0, err
	}
	return votes, nil
}

func (s *SQLStore) AcceptAnswer(ctx context.Context, questionID, answerID, byUserID string) error {
	q, err := s.get(ctx, questionID)
	if err != nil {
		return err
	}
	if q.AskedBy != byUserID {
		return ErrForbidden
	}
	found := false
	for i := range q.Answers {
		q.Answers[i].IsAccepted = q.Answers[i].ID == answerID
		if q.Answers[i].IsAccepted {
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return s.writeAnswers(ctx, questionID, q.Answers)
}

func (s *SQLStore) writeAnswers(ctx context.Context, questionID string, answers []Answer) error {
	aj, err := json.Marshal(emptyAnswers(answers))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE questions SET answers_json=$1 WHERE id=$2`, string(aj), questionID)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanQuestion(row scanner) (Question, error) {
	var (
		q       Question
		tags    string
		answers string
		created int64
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Content, &q.Subject, &tags,
		&q.AskedBy, &answers, &q.Votes, &q.Views, &created); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(tags), &q.Tags); err != nil {
		q.Tags = nil
	}
	if err := json.Unmarshal([]byte(answers), &q.Answers); err != nil {
		q.Answers = nil
	}
	q.CreatedAt = time.Unix(created, 0)
	return q, nil
}

func emptyTags(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyAnswers(a []Answer) []Answer {
	if a == nil {
		return []Answer{}
	}
	return a
}
