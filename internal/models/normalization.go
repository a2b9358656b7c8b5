// internal/models/normalization.go
package models

import (
	"time"
)

type StatusCode string

const (
	StatusOK              StatusCode = "Ok"
	StatusMissingEntities StatusCode = "MissingEntities"
)

type Flag string

const (
	FlagDateRejected Flag = "DateRejected"
)

const UnknownPersonType = "Unknown"

// DateInfo is a normalized date-time value. A nil FullDate marks a value that
// failed the plausibility check; all numeric fields are zero in that case.
type DateInfo struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Day      int        `json:"day"`
	Hour     int        `json:"hour"`
	Minute   int        `json:"minute"`
	FullDate *time.Time `json:"fullDate"`
}

func (d DateInfo) IsRejected() bool {
	return d.FullDate == nil
}

// HasCalendarDate reports whether the value carries a plausible calendar date.
// A time of day on its own does not.
func (d DateInfo) HasCalendarDate() bool {
	return !d.IsRejected() && (d.Year != 0 || d.Month != 0 || d.Day != 0)
}

func RejectedDate() DateInfo {
	return DateInfo{}
}

type PersonInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type LocationInfo struct {
	RawText string  `json:"location"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zipcode *string `json:"zipcode"`
}

// NormalizationResult is built fresh for every request.
type NormalizationResult struct {
	Intent                 *string             `json:"intent"`
	Transcription          string              `json:"transcription"`
	EvaluatedTranscription string              `json:"evaluatedTranscription"`
	Dates                  []DateInfo          `json:"dates"`
	Person                 *PersonInfo         `json:"person"`
	Location               *LocationInfo       `json:"location"`
	AdditionalData         *AdditionalEntities `json:"additionalData"`
	Flags                  []Flag              `json:"flags"`
	StatusCode             StatusCode          `json:"statusCode"`
}

func (r *NormalizationResult) HasFlag(flag Flag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// DateRejected reports whether the date confidence flag is raised.
func (r *NormalizationResult) DateRejected() bool {
	return r.HasFlag(FlagDateRejected)
}

// NeedsReview reports whether a human should look at the result.
func (r *NormalizationResult) NeedsReview() bool {
	return r.DateRejected() || r.StatusCode != StatusOK
}
