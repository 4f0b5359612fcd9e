package models

import "time"

// Extraction is one persisted pipeline result, linked to the token subject
// that uploaded the image. One row per (subject, file name): re-extracting
// the same file replaces the previous result, and the unique index keeps
// concurrent batch runs from inserting duplicates. The seven canonical
// fields are stored denormalized so admin review screens can query them
// directly.
type Extraction struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Subject        string    `gorm:"uniqueIndex:idx_extractions_subject_file" json:"subject"`
	FileName       string    `gorm:"index;uniqueIndex:idx_extractions_subject_file" json:"file_name"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PassportNumber string    `gorm:"index" json:"passport_number"`
	Nationality    string    `json:"nationality"`
	DateOfBirth    string    `json:"date_of_birth"`
	Sex            string    `json:"sex"`
	ExpiryDate     string    `json:"expiry_date"`
	MRZValid       bool      `json:"mrz_valid"`
	Confidence     int       `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}
