package sqlite

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func createStudent(t *testing.T, s *SQLiteStore, nickname string) *models.Student {
	student := &models.Student{
		Nickname:   nickname,
		FirstName:  "John",
		LastName:   "Doe",
		Email:      nickname + "@example.com",
		UploadCode: "UC" + nickname,
	}
	require.NoError(t, s.CreateStudent(context.Background(), student))
	return student
}

func createSubmission(t *testing.T, s *SQLiteStore, studentID int64, fileName, code string) *models.Submission {
	submission := &models.Submission{
		StudentID:        studentID,
		FileName:         fileName,
		MD5:              "d41d8cd98f00b204e9800998ecf8427e",
		SizeBytes:        1000,
		VerificationCode: code,
	}
	require.NoError(t, s.CreateSubmission(context.Background(), submission))
	return submission
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, s.ApplyMigrations("../../../migrations"))
}

func TestStudentOperations(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	student := createStudent(t, s, "jdoe")
	assert.NotZero(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())

	t.Run("by nickname", func(t *testing.T) {
		got, err := s.StudentByNickname(ctx, "jdoe")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, student.ID, got.ID)
		assert.Equal(t, student.Email, got.Email)
		assert.Equal(t, student.UploadCode, got.UploadCode)
	})

	t.Run("by upload code", func(t *testing.T) {
		got, err := s.StudentByUploadCode(ctx, student.UploadCode)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "jdoe", got.Nickname)
	})

	t.Run("missing student", func(t *testing.T) {
		got, err := s.StudentByNickname(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.StudentByUploadCode(ctx, "ZZZZZZZZ")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		dup := &models.Student{
			Nickname:   "jdoe",
			FirstName:  "Jane",
			LastName:   "Doe",
			Email:      "jane@example.com",
			UploadCode: "OTHER123",
		}
		err := s.CreateStudent(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrConflict)

		students, err := s.ListStudents(ctx)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &models.Student{
			Nickname:   "other",
			FirstName:  "Jane",
			LastName:   "Doe",
			Email:      student.Email,
			UploadCode: "OTHER456",
		}
		assert.ErrorIs(t, s.CreateStudent(ctx, dup), store.ErrConflict)
	})
}

func TestListStudentsKeepsCreationOrder(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	for _, nick := range []string{"zed", "amy", "mia"} {
		createStudent(t, s, nick)
	}

	students, err := s.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "zed", students[0].Nickname)
	assert.Equal(t, "amy", students[1].Nickname)
	assert.Equal(t, "mia", students[2].Nickname)
}

func TestSubmissionOperations(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	alice := createStudent(t, s, "alice")
	bob := createStudent(t, s, "bob")

	first := createSubmission(t, s, alice.ID, "first.pdf", "aaaaaaaa1")
	second := createSubmission(t, s, alice.ID, "second.pdf", "aaaaaaaa2")
	third := createSubmission(t, s, alice.ID, "third.pdf", "aaaaaaaa3")
	createSubmission(t, s, bob.ID, "bob.pdf", "bbbbbbbb1")

	t.Run("count", func(t *testing.T) {
		count, err := s.CountSubmissions(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		students, err := s.CountStudentsWithSubmissions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, students)
	})

	t.Run("nth latest", func(t *testing.T) {
		got, err := s.NthLatestSubmission(ctx, alice.ID, 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, third.ID, got.ID)

		got, err = s.NthLatestSubmission(ctx, alice.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.FileName, got.FileName)

		got, err = s.NthLatestSubmission(ctx, alice.ID, 2)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.FileName, got.FileName)

		got, err = s.NthLatestSubmission(ctx, alice.ID, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("latest per student", func(t *testing.T) {
		latest, err := s.LatestSubmissions(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, "third.pdf", latest[0].FileName)
		assert.Equal(t, "bob.pdf", latest[1].FileName)
	})

	t.Run("by verification code", func(t *testing.T) {
		got, err := s.SubmissionByVerificationCode(ctx, "aaaaaaaa2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "second.pdf", got.FileName)
		assert.Equal(t, alice.ID, got.StudentID)

		got, err = s.SubmissionByVerificationCode(ctx, "garbage")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate verification code", func(t *testing.T) {
		dup := &models.Submission{
			StudentID:        bob.ID,
			FileName:         "dup.pdf",
			MD5:              "x",
			SizeBytes:        1,
			VerificationCode: "aaaaaaaa1",
		}
		assert.ErrorIs(t, s.CreateSubmission(ctx, dup), store.ErrConflict)
	})

	t.Run("unknown student", func(t *testing.T) {
		orphan := &models.Submission{
			StudentID:        9999,
			FileName:         "orphan.pdf",
			MD5:              "x",
			SizeBytes:        1,
			VerificationCode: "ccccccccc",
		}
		err := s.CreateSubmission(ctx, orphan)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrConflict)
	})
}

func TestErrorRecords(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		rec, err := s.CreateError(ctx, fmt.Sprintf("failure %d", i))
		require.NoError(t, err)
		assert.NotZero(t, rec.ID)
	}

	records, err := s.LastErrors(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "failure 3", records[0].Detail)
	assert.Equal(t, "failure 2", records[1].Detail)
}
