package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const userCols = `id, name, email, password_hash, role, grade, subjects_json, bio,
	progress_json, quiz_scores_json, study_plan_json, reset_token, reset_expires,
	version, created_at, updated_at`

func (s *SQLStore) Create(ctx context.Context, u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 0

	subj, prog, scores, plan, err := marshalDocs(u)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users
		(id, name, email, password_hash, role, grade, subjects_json, bio,
		 progress_json, quiz_scores_json, study_plan_json, reset_token, reset_expires,
		 version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Grade, subj, u.Bio,
		prog, scores, plan, u.ResetToken, nullUnix(u.ResetExpires),
		u.Version, now.Unix(), now.Unix())
	if err != nil && isDuplicate(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (User, error) {
	return s.getWhere(ctx, `id=$1`, id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getWhere(ctx, `email=$1`, email)
}

func (s *SQLStore) GetByResetToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return s.getWhere(ctx, `reset_token=$1`, token)
}

func (s *SQLStore) getWhere(ctx context.Context, where string, arg any) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) Update(ctx context.Context, u *User) error {
	now := time.Now()
	subj, prog, scores, plan, err := marshalDocs(u)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET
		name=$1, email=$2, password_hash=$3, role=$4, grade=$5, subjects_json=$6, bio=$7,
		progress_json=$8, quiz_scores_json=$9, study_plan_json=$10,
		reset_token=$11, reset_expires=$12, version=$13, updated_at=$14
		WHERE id=$15 AND version=$16`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Grade, subj, u.Bio,
		prog, scores, plan,
		u.ResetToken, nullUnix(u.ResetExpires), u.Version+1, now.Unix(),
		u.ID, u.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row is either gone or moved on; disambiguate for the caller.
		if _, err := s.Get(ctx, u.ID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	u.Version++
	u.UpdatedAt = now
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanUser(row scanner) (User, error) {
	var (
		u                        User
		subj, prog, scores, plan string
		resetExp                 sql.NullInt64
		created, updated         int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Grade,
		&subj, &u.Bio, &prog, &scores, &plan, &u.ResetToken, &resetExp,
		&u.Version, &created, &updated); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal([]byte(subj), &u.Subjects); err != nil {
		u.Subjects = nil
	}
	if err := json.Unmarshal([]byte(prog), &u.Progress); err != nil {
		u.Progress = nil
	}
	if err := json.Unmarshal([]byte(scores), &u.QuizScores); err != nil {
		u.QuizScores = nil
	}
	if plan != "" && plan != "null" {
		var sp StudyPlan
		if err := json.Unmarshal([]byte(plan), &sp); err == nil {
			u.StudyPlan = &sp
		}
	}
	if resetExp.Valid {
		u.ResetExpires = time.Unix(resetExp.Int64, 0)
	}
	u.CreatedAt = time.Unix(created, 0)
	u.UpdatedAt = time.Unix(updated, 0)
	return u, nil
}

func marshalDocs(u *User) (subjects, progress, scores, plan string, err error) {
	sj, err := json.Marshal(emptySlice(u.Subjects))
	if err != nil {
		return "", "", "", "", err
	}
	pj, err := json.Marshal(emptyProgress(u.Progress))
	if err != nil {
		return "", "", "", "", err
	}
	qj, err := json.Marshal(emptyScores(u.QuizScores))
	if err != nil {
		return "", "", "", "", err
	}
	spj := []byte("null")
	if u.StudyPlan != nil {
		spj, err = json.Marshal(u.StudyPlan)
		if err != nil {
			return "", "", "", "", err
		}
	}
	return string(sj), string(pj), string(qj), string(spj), nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyProgress(p []SubjectProgress) []SubjectProgress {
	if p == nil {
		return []SubjectProgress{}
	}
	return p
}

func emptyScores(s []QuizScore) []QuizScore {
	if s == nil {
		return []QuizScore{}
	}
	return s
}

func nullUnix(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
