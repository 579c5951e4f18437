package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type Student struct {
	ID         int64     `db:"id" json:"id"`
	Nickname   string    `db:"nickname" json:"nickname"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      string    `db:"email" json:"email"`
	UploadCode string    `db:"upload_code" json:"upload_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// StudentCreate is the registration payload.
type StudentCreate struct {
	Nickname  string `json:"nickname" validate:"required,max=12,alphanumunicode"`
	FirstName string `json:"first_name" validate:"required,max=254,alphapunct"`
	LastName  string `json:"last_name" validate:"required,max=254,alphapunct"`
	Email     string `json:"email" validate:"required,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// error is only returned for an empty tag or nil func
	_ = v.RegisterValidation("alphapunct", func(fl validator.FieldLevel) bool {
		return IsAlphaPunct(fl.Field().String())
	})
	return v
}

func (s *StudentCreate) Validate() error {
	return validate.Struct(s)
}

// IsAlphaPunct reports whether v consists of letters and ASCII punctuation
// only, with at least one letter.
func IsAlphaPunct(v string) bool {
	letters := 0
	for _, r := range v {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r < unicode.MaxASCII && strings.ContainsRune(asciiPunctuation, r):
		default:
			return false
		}
	}
	return letters > 0
}

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// StudentView is a single student together with the state of its current
// submission.
type StudentView struct {
	Student
	HasSubmission  bool        `json:"has_submission"`
	LastSubmission *Submission `json:"last_submission"`
}

type StudentSummary struct {
	Nickname       string             `json:"nickname"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	HasSubmission  bool               `json:"has_submission"`
	LastSubmission *SubmissionSummary `json:"last_submission"`
}

type SummaryTotals struct {
	TotalStudents    int `json:"total_students"`
	TotalSubmissions int `json:"total_submissions"`
}

type StudentsSummary struct {
	Totals   SummaryTotals    `json:"totals"`
	Students []StudentSummary `json:"students"`
}
