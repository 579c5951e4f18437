package models

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodes(t *testing.T) {
	upload := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	verification := regexp.MustCompile(`^[a-z0-9]{9}$`)

	for i := 0; i < 200; i++ {
		code, err := GenerateUploadCode(8)
		require.NoError(t, err)
		assert.Regexp(t, upload, code)

		code, err = GenerateVerificationCode(9)
		require.NoError(t, err)
		assert.Regexp(t, verification, code)
	}
}

func TestStudentCreateValidate(t *testing.T) {
	valid := func() StudentCreate {
		return StudentCreate{
			Nickname:  "jdoe42",
			FirstName: "John",
			LastName:  "O'Neil-Smith",
			Email:     "john@example.com",
		}
	}

	t.Run("valid", func(t *testing.T) {
		s := valid()
		assert.NoError(t, s.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*StudentCreate)
	}{
		{"nickname too long", func(s *StudentCreate) { s.Nickname = strings.Repeat("a", 13) }},
		{"nickname not alphanumeric", func(s *StudentCreate) { s.Nickname = "j.doe" }},
		{"empty nickname", func(s *StudentCreate) { s.Nickname = "" }},
		{"first name with digits", func(s *StudentCreate) { s.FirstName = "J0hn" }},
		{"first name with space", func(s *StudentCreate) { s.FirstName = "John Paul" }},
		{"last name too long", func(s *StudentCreate) { s.LastName = strings.Repeat("a", 255) }},
		{"bad email", func(s *StudentCreate) { s.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestIsAlphaPunct(t *testing.T) {
	assert.True(t, IsAlphaPunct("Renée"))
	assert.True(t, IsAlphaPunct("d'Artagnan"))
	assert.False(t, IsAlphaPunct("..."))
	assert.False(t, IsAlphaPunct(""))
	assert.False(t, IsAlphaPunct("Bob1"))
}

func TestSubmissionMetadataWithholdsFileName(t *testing.T) {
	var nilSubmission *Submission
	assert.Nil(t, nilSubmission.Metadata())

	s := &Submission{FileName: "key.pdf", MD5: "abc", SizeBytes: 10, VerificationCode: "abcdefghi"}
	m := s.Metadata()
	assert.Equal(t, "abc", m.MD5)
	assert.Equal(t, int64(10), m.SizeBytes)
	assert.Equal(t, "abcdefghi", m.VerificationCode)
}
