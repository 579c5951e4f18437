package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/models"
)

type SubmissionStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateStudent(ctx context.Context, student *models.Student) error
	StudentByNickname(ctx context.Context, nickname string) (*models.Student, error)
	StudentByUploadCode(ctx context.Context, uploadCode string) (*models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)

	CreateSubmission(ctx context.Context, submission *models.Submission) error
	CountSubmissions(ctx context.Context, studentID int64) (int, error)
	CountStudentsWithSubmissions(ctx context.Context) (int, error)
	LatestSubmissions(ctx context.Context) ([]models.Submission, error)
	SubmissionByVerificationCode(ctx context.Context, code string) (*models.Submission, error)
	// NthLatestSubmission returns the n-th newest submission of a student,
	// n=0 being the current one.
	NthLatestSubmission(ctx context.Context, studentID int64, n int) (*models.Submission, error)

	CreateError(ctx context.Context, detail string) (*models.ErrorRecord, error)
	LastErrors(ctx context.Context, count int) ([]models.ErrorRecord, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB         *sqlx.DB
	Converter  func(string) string
	IsConflict func(error) bool
}

const submissionColumns = `id, student_id, file_name, md5, size_bytes, verification_code, created_at, updated_at`

const studentColumns = `id, nickname, first_name, last_name, email, upload_code, created_at, updated_at`

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory in lexical order,
// translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		names = append(names, file.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		stmt := string(content)
		if translateSQL != nil {
			stmt = translateSQL(stmt)
		}

		logger.Debug.Printf("Applying migration: %s", name)
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *BaseStore) query(q string) string {
	if s.Converter == nil {
		return q
	}
	return s.Converter(q)
}

func (s *BaseStore) wrap(err error, msg string) error {
	if s.IsConflict != nil && s.IsConflict(err) {
		return &ConflictError{Op: msg, Err: err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *BaseStore) CreateStudent(ctx context.Context, student *models.Student) error {
	ts := now()
	query := s.query(`
		INSERT INTO students (nickname, first_name, last_name, email, upload_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.DB.QueryRowxContext(ctx, query,
		student.Nickname,
		student.FirstName,
		student.LastName,
		student.Email,
		student.UploadCode,
		ts,
		ts,
	).Scan(&student.ID)
	if err != nil {
		return s.wrap(err, "failed to create student")
	}

	student.CreatedAt = ts
	student.UpdatedAt = ts
	return nil
}

func (s *BaseStore) getStudent(ctx context.Context, column, value string) (*models.Student, error) {
	var student models.Student
	query := s.query(`SELECT ` + studentColumns + ` FROM students WHERE ` + column + ` = ? LIMIT 1`)

	err := s.DB.GetContext(ctx, &student, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student by %s: %w", column, err)
	}
	return &student, nil
}

func (s *BaseStore) StudentByNickname(ctx context.Context, nickname string) (*models.Student, error) {
	return s.getStudent(ctx, "nickname", nickname)
}

func (s *BaseStore) StudentByUploadCode(ctx context.Context, uploadCode string) (*models.Student, error) {
	return s.getStudent(ctx, "upload_code", uploadCode)
}

func (s *BaseStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	err := s.DB.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	ts := now()
	query := s.query(`
		INSERT INTO submissions (student_id, file_name, md5, size_bytes, verification_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.DB.QueryRowxContext(ctx, query,
		submission.StudentID,
		submission.FileName,
		submission.MD5,
		submission.SizeBytes,
		submission.VerificationCode,
		ts,
		ts,
	).Scan(&submission.ID)
	if err != nil {
		return s.wrap(err, "failed to create submission")
	}

	submission.CreatedAt = ts
	submission.UpdatedAt = ts
	return nil
}

func (s *BaseStore) CountSubmissions(ctx context.Context, studentID int64) (int, error) {
	var count int
	query := s.query(`SELECT COUNT(*) FROM submissions WHERE student_id = ?`)
	if err := s.DB.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (s *BaseStore) CountStudentsWithSubmissions(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.GetContext(ctx, &count, `SELECT COUNT(DISTINCT student_id) FROM submissions`); err != nil {
		return 0, fmt.Errorf("failed to count students with submissions: %w", err)
	}
	return count, nil
}

func (s *BaseStore) LatestSubmissions(ctx context.Context) ([]models.Submission, error) {
	submissions := []models.Submission{}
	err := s.DB.SelectContext(ctx, &submissions, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE id IN (
			SELECT MAX(id)
			FROM submissions
			GROUP BY student_id
		)
		ORDER BY student_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest submissions: %w", err)
	}
	return submissions, nil
}

func (s *BaseStore) SubmissionByVerificationCode(ctx context.Context, code string) (*models.Submission, error) {
	var submission models.Submission
	query := s.query(`SELECT ` + submissionColumns + ` FROM submissions WHERE verification_code = ? LIMIT 1`)

	err := s.DB.GetContext(ctx, &submission, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission by verification code: %w", err)
	}
	return &submission, nil
}

func (s *BaseStore) NthLatestSubmission(ctx context.Context, studentID int64, n int) (*models.Submission, error) {
	var submission models.Submission
	query := s.query(`
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE student_id = ?
		ORDER BY id DESC
		LIMIT 1 OFFSET ?
	`)

	err := s.DB.GetContext(ctx, &submission, query, studentID, n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission #%d of student %d: %w", n, studentID, err)
	}
	return &submission, nil
}

func (s *BaseStore) CreateError(ctx context.Context, detail string) (*models.ErrorRecord, error) {
	ts := now()
	record := &models.ErrorRecord{Detail: detail, CreatedAt: ts, UpdatedAt: ts}
	query := s.query(`
		INSERT INTO errors (detail, created_at, updated_at)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	if err := s.DB.QueryRowxContext(ctx, query, detail, ts, ts).Scan(&record.ID); err != nil {
		return nil, fmt.Errorf("failed to create error record: %w", err)
	}
	return record, nil
}

func (s *BaseStore) LastErrors(ctx context.Context, count int) ([]models.ErrorRecord, error) {
	records := []models.ErrorRecord{}
	query := s.query(`
		SELECT id, detail, created_at, updated_at
		FROM errors
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	if err := s.DB.SelectContext(ctx, &records, query, count); err != nil {
		return nil, fmt.Errorf("failed to fetch last errors: %w", err)
	}
	return records, nil
}
