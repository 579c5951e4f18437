package models

import "time"

type Submission struct {
	ID               int64     `db:"id" json:"-"`
	StudentID        int64     `db:"student_id" json:"-"`
	FileName         string    `db:"file_name" json:"file_name"`
	MD5              string    `db:"md5" json:"md5"`
	SizeBytes        int64     `db:"size_bytes" json:"size_bytes"`
	VerificationCode string    `db:"verification_code" json:"verification_code"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}

// Metadata is the submission as shown to the student: the stored blob key
// is withheld.
func (s *Submission) Metadata() *SubmissionMetadata {
	if s == nil {
		return nil
	}
	return &SubmissionMetadata{
		MD5:              s.MD5,
		SizeBytes:        s.SizeBytes,
		VerificationCode: s.VerificationCode,
		CreatedAt:        s.CreatedAt,
	}
}

func (s *Submission) Summary() *SubmissionSummary {
	if s == nil {
		return nil
	}
	return &SubmissionSummary{
		VerificationCode: s.VerificationCode,
		CreatedAt:        s.CreatedAt,
	}
}

type SubmissionMetadata struct {
	MD5              string    `json:"md5"`
	SizeBytes        int64     `json:"size_bytes"`
	VerificationCode string    `json:"verification_code"`
	CreatedAt        time.Time `json:"created_at"`
}

type SubmissionSummary struct {
	CreatedAt        time.Time `json:"created_at"`
	VerificationCode string    `json:"verification_code"`
}

// UploadCompletion reports the current submission of a student and how many
// uploads are still allowed.
type UploadCompletion struct {
	UploadsAvailable int                 `json:"uploads_available"`
	HasSubmission    bool                `json:"has_submission"`
	LastSubmission   *SubmissionMetadata `json:"last_submission"`
}

type DownloadURL struct {
	DownloadURL    string `json:"download_url"`
	ExpiresSeconds int    `json:"expires_seconds"`
}
