package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/metrics"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

const (
	storageFailureDetail       = "Submission Storage Error"
	verificationCodeAttempts   = 3
	errObjectStorageNotEnabled = "object storage is not configured"
)

type Upload struct {
	Filename string
	Body     io.Reader
}

// Submit stores a new submission for the student owning uploadCode.
//
// The blob is stored before the submission row is written, and the blob of
// the previous submission is deleted afterwards, so at most one blob per
// student stays live. Failures other than the eligibility checks are
// recorded in the errors table and reported as KindStorageFailure.
func (s *Service) Submit(ctx context.Context, uploadCode string, upload Upload) (*models.UploadCompletion, error) {
	if s.Guard != nil {
		ok, err := s.Guard.Allow(ctx, uploadCode)
		if err != nil {
			logger.Error.Printf("Rate limit check failed, letting upload through: %v", err)
		} else if !ok {
			return nil, newError(KindTooManyRequests, "Too many upload attempts, try again later")
		}
	}

	student, err := s.Store.StudentByUploadCode(ctx, uploadCode)
	if err != nil {
		return nil, s.recordFailure(ctx, err)
	}
	if student == nil {
		return nil, newError(KindNotFound, "No student found with the provided upload_code")
	}

	if s.Guard != nil {
		unlock, err := s.Guard.Lock(ctx, student.ID)
		switch {
		case errors.Is(err, ErrLocked):
			return nil, newError(KindTooManyRequests, "Another upload for this student is in progress")
		case err != nil:
			logger.Error.Printf("Upload lock for student %d unavailable, continuing without it: %v", student.ID, err)
		default:
			defer unlock()
		}
	}

	limit := s.Config.Policy.SubmissionsPerStudent
	count, err := s.Store.CountSubmissions(ctx, student.ID)
	if err != nil {
		return nil, s.recordFailure(ctx, err)
	}
	if count >= limit {
		return nil, newError(KindQuotaExceeded, "Submissions count limit exceeded")
	}

	data, err := readBounded(upload.Body, s.Config.Policy.SubmissionMaxSizeBytes)
	if errors.Is(err, errPayloadTooLarge) {
		return nil, &Error{Kind: KindPayloadTooLarge, Detail: "Upload size limit exceeded", Err: err}
	}
	if err != nil {
		return nil, s.recordFailure(ctx, fmt.Errorf("failed to read upload: %w", err))
	}
	logger.Info.Printf("File %q has been submitted, size: %d", upload.Filename, len(data))

	if s.Objects == nil {
		return nil, s.recordFailure(ctx, errors.New(errObjectStorageNotEnabled))
	}

	key := s.newKey() + path.Ext(upload.Filename)
	info, err := s.Objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, s.recordFailure(ctx, err)
	}
	metrics.UploadedBytes.Observe(float64(info.Size))
	logger.Info.Printf("File %q has been persisted as %q", upload.Filename, info.Key)

	submission := &models.Submission{
		StudentID: student.ID,
		FileName:  info.Key,
		MD5:       strings.Trim(info.ETag, `"`),
		SizeBytes: info.Size,
	}
	if err := s.createSubmission(ctx, submission); err != nil {
		// the stored blob is orphaned here
		return nil, s.recordFailure(ctx, err)
	}

	s.retirePrevious(ctx, student.ID)

	available := limit - (count + 1)
	if current, err := s.Store.CountSubmissions(ctx, student.ID); err != nil {
		logger.Error.Printf("Failed to recount submissions of student %d: %v", student.ID, err)
	} else {
		available = limit - current
	}

	return &models.UploadCompletion{
		UploadsAvailable: available,
		HasSubmission:    true,
		LastSubmission:   submission.Metadata(),
	}, nil
}

// createSubmission inserts the row with a fresh verification code, drawing
// a new code when it collides with an existing one.
func (s *Service) createSubmission(ctx context.Context, submission *models.Submission) error {
	var err error
	for attempt := 0; attempt < verificationCodeAttempts; attempt++ {
		submission.VerificationCode, err = models.GenerateVerificationCode(s.Config.Policy.VerificationCodeLength)
		if err != nil {
			return err
		}

		err = s.Store.CreateSubmission(ctx, submission)
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		logger.Debug.Printf("Verification code collision, attempt %d", attempt+1)
	}
	return err
}

// retirePrevious deletes the blob of the second newest submission. A failure
// is recorded but does not fail the upload; the next upload retires
// whatever is second newest then.
func (s *Service) retirePrevious(ctx context.Context, studentID int64) {
	previous, err := s.Store.NthLatestSubmission(ctx, studentID, 1)
	if err != nil {
		s.recordFailure(ctx, fmt.Errorf("failed to find previous submission: %w", err))
		return
	}
	if previous == nil {
		return
	}

	if err := s.Objects.Delete(ctx, previous.FileName); err != nil {
		s.recordFailure(ctx, fmt.Errorf("failed to retire %s: %w", previous.FileName, err))
		return
	}
	logger.Debug.Printf("Retired previous submission file %s of student %d", previous.FileName, studentID)
}

// recordFailure keeps the failure detail in the errors table and returns the
// generic error shown to callers.
func (s *Service) recordFailure(ctx context.Context, cause error) error {
	logger.Error.Printf("Submission storage error: %v", cause)
	metrics.ErrorsRecorded.Inc()

	if _, err := s.Store.CreateError(context.WithoutCancel(ctx), cause.Error()); err != nil {
		logger.Error.Printf("Failed to record error %q: %v", cause.Error(), err)
	}
	return storageFailure(storageFailureDetail, cause)
}

func (s *Service) SubmissionStatus(ctx context.Context, uploadCode string) (*models.UploadCompletion, error) {
	student, err := s.Store.StudentByUploadCode(ctx, uploadCode)
	if err != nil {
		return nil, storageFailure("Failed to fetch submission", err)
	}
	if student == nil {
		return nil, newError(KindNotFound, "Student not found")
	}

	last, err := s.Store.NthLatestSubmission(ctx, student.ID, 0)
	if err != nil {
		return nil, storageFailure("Failed to fetch submission", err)
	}

	count, err := s.Store.CountSubmissions(ctx, student.ID)
	if err != nil {
		return nil, storageFailure("Failed to fetch submission", err)
	}

	return &models.UploadCompletion{
		UploadsAvailable: s.Config.Policy.SubmissionsPerStudent - count,
		HasSubmission:    last != nil,
		LastSubmission:   last.Metadata(),
	}, nil
}

func (s *Service) DownloadTarget(ctx context.Context, verificationCode string) (*models.DownloadURL, error) {
	submission, err := s.Store.SubmissionByVerificationCode(ctx, verificationCode)
	if err != nil {
		return nil, storageFailure("Failed to fetch submission", err)
	}
	if submission == nil {
		return nil, newError(KindNotFound, "Submission not found")
	}

	if s.Objects == nil {
		return nil, storageFailure("Submission storage is unavailable", errors.New(errObjectStorageNotEnabled))
	}

	link, err := s.Objects.PresignGet(ctx, submission.FileName, s.downloadTTL())
	if err != nil {
		return nil, storageFailure("Submission storage is unavailable", err)
	}

	return &models.DownloadURL{
		DownloadURL:    link,
		ExpiresSeconds: s.Config.Policy.DownloadURLExpiresSeconds,
	}, nil
}
