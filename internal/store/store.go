// Package store persists exam records in SQLite as whole-record documents
// keyed by (exam_name, student_name, question_type). The core never issues
// partial-field reads or writes: callers read the full record, mutate it in
// memory, and upsert the whole record back. Concurrent writers to the same
// key race and the last upsert wins.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/castrumai/examai/internal/model"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed exam record document store.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the record database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exam_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_name TEXT NOT NULL,
		student_name TEXT NOT NULL,
		question_type TEXT NOT NULL,
		questions TEXT,
		choices TEXT,
		correct_answers TEXT,
		rubrics TEXT,
		answers TEXT,
		results TEXT,
		reasonings TEXT,
		total_score REAL,
		plagiarism_violations TEXT NOT NULL DEFAULT '',
		UNIQUE(exam_name, student_name, question_type)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const recordColumns = `id, exam_name, student_name, question_type,
	questions, choices, correct_answers, rubrics,
	answers, results, reasonings, total_score, plagiarism_violations`

// Get returns the full record for a key, or model.ErrRecordNotFound. A
// soft-deleted record (all array fields null) is still a record.
func (s *Store) Get(ctx context.Context, key model.Key) (*model.ExamRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM exam_records
		 WHERE exam_name = ? AND student_name = ? AND question_type = ?`,
		key.ExamName, key.StudentName, key.QuestionType,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrRecordNotFound
	}
	return rec, err
}

// Upsert writes the whole record for its key and returns the stored row.
// The parallel-array invariant is enforced here: a record that would break
// it is rejected, never written.
func (s *Store) Upsert(ctx context.Context, rec *model.ExamRecord) (*model.ExamRecord, error) {
	if err := rec.CheckConsistency(); err != nil {
		return nil, err
	}

	questions, err := marshalArray(rec.Questions)
	if err != nil {
		return nil, err
	}
	choices, err := marshalArray(rec.Choices)
	if err != nil {
		return nil, err
	}
	correctAnswers, err := marshalArray(rec.CorrectAnswers)
	if err != nil {
		return nil, err
	}
	rubrics, err := marshalArray(rec.Rubrics)
	if err != nil {
		return nil, err
	}
	answers, err := marshalArray(rec.Answers)
	if err != nil {
		return nil, err
	}
	results, err := marshalArray(rec.Results)
	if err != nil {
		return nil, err
	}
	reasonings, err := marshalArray(rec.Reasonings)
	if err != nil {
		return nil, err
	}

	var totalScore sql.NullFloat64
	if rec.TotalScore != nil {
		totalScore = sql.NullFloat64{Float64: *rec.TotalScore, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exam_records (exam_name, student_name, question_type,
			questions, choices, correct_answers, rubrics,
			answers, results, reasonings, total_score, plagiarism_violations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(exam_name, student_name, question_type) DO UPDATE SET
			questions = excluded.questions,
			choices = excluded.choices,
			correct_answers = excluded.correct_answers,
			rubrics = excluded.rubrics,
			answers = excluded.answers,
			results = excluded.results,
			reasonings = excluded.reasonings,
			total_score = excluded.total_score,
			plagiarism_violations = excluded.plagiarism_violations`,
		rec.ExamName, rec.StudentName, rec.QuestionType,
		questions, choices, correctAnswers, rubrics,
		answers, results, reasonings, totalScore, rec.PlagiarismViolations,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert exam record: %w", err)
	}

	return s.Get(ctx, model.Key{
		ExamName:     rec.ExamName,
		StudentName:  rec.StudentName,
		QuestionType: rec.QuestionType,
	})
}

// Delete removes the record row entirely. This is distinct from a soft
// delete, which nulls the array fields but keeps the row.
func (s *Store) Delete(ctx context.Context, key model.Key) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exam_records WHERE exam_name = ? AND student_name = ? AND question_type = ?`,
		key.ExamName, key.StudentName, key.QuestionType,
	)
	if err != nil {
		return fmt.Errorf("delete exam record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrRecordNotFound
	}
	return nil
}

// ListKeys returns every record key, for administrative listing.
func (s *Store) ListKeys(ctx context.Context) ([]model.Key, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exam_name, student_name, question_type FROM exam_records ORDER BY exam_name, student_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []model.Key
	for rows.Next() {
		var k model.Key
		if err := rows.Scan(&k.ExamName, &k.StudentName, &k.QuestionType); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ExamRecord, error) {
	var rec model.ExamRecord
	var questions, choices, correctAnswers, rubrics, answers, results, reasonings sql.NullString
	var totalScore sql.NullFloat64

	err := row.Scan(
		&rec.ID, &rec.ExamName, &rec.StudentName, &rec.QuestionType,
		&questions, &choices, &correctAnswers, &rubrics,
		&answers, &results, &reasonings, &totalScore, &rec.PlagiarismViolations,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalArray(questions, &rec.Questions); err != nil {
		return nil, err
	}
	if err := unmarshalArray(choices, &rec.Choices); err != nil {
		return nil, err
	}
	if err := unmarshalArray(correctAnswers, &rec.CorrectAnswers); err != nil {
		return nil, err
	}
	if err := unmarshalArray(rubrics, &rec.Rubrics); err != nil {
		return nil, err
	}
	if err := unmarshalArray(answers, &rec.Answers); err != nil {
		return nil, err
	}
	if err := unmarshalArray(results, &rec.Results); err != nil {
		return nil, err
	}
	if err := unmarshalArray(reasonings, &rec.Reasonings); err != nil {
		return nil, err
	}
	if totalScore.Valid {
		rec.TotalScore = &totalScore.Float64
	}
	return &rec, nil
}

// marshalArray renders a slice as a JSON column value; a nil slice becomes
// SQL NULL so soft-deleted state survives round trips.
func marshalArray(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return sql.NullString{}, nil
		}
	case [][]string:
		if t == nil {
			return sql.NullString{}, nil
		}
	case []model.CompiledRubric:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal record array: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalArray(col sql.NullString, target any) error {
	if !col.Valid {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), target); err != nil {
		return fmt.Errorf("unmarshal record array: %w", err)
	}
	return nil
}
