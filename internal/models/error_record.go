package models

import "time"

// ErrorRecord is an unexpected failure kept for operators.
type ErrorRecord struct {
	ID        int64     `db:"id" json:"id"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}
