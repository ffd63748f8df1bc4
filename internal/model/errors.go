package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTopic is returned when a topic descriptor resolves to nothing.
	ErrUnknownTopic = errors.New("unknown topic")
	// ErrNoSubTopics is returned when a topic group has no sub-topic catalogue.
	ErrNoSubTopics = errors.New("no sub-topics for topic group")
	// ErrNoPassages is returned when retrieval yields zero source passages.
	ErrNoPassages = errors.New("no passages retrieved for topic")
	// ErrNoFileMatch is returned when semantic file matching finds nothing
	// above the acceptance threshold.
	ErrNoFileMatch = errors.New("no source file matches keyword")
	// ErrRecordNotFound is returned for point reads of an absent exam record.
	ErrRecordNotFound = errors.New("exam record not found")
	// ErrChoiceCountMismatch is returned when a generation request's choice
	// count conflicts with an existing record's established cardinality.
	ErrChoiceCountMismatch = errors.New("choice count does not match existing exam")
	// ErrEmptyRecord is returned when a delete targets a record with no questions.
	ErrEmptyRecord = errors.New("no questions to delete")
	// ErrIndexOutOfRange is returned for point operations on an index outside
	// the stored array.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoChoices is returned when an MCQ operation needs stored choices and
	// the record has none.
	ErrNoChoices = errors.New("no choices stored for multiple choice exam")
)

// CountMismatchError reports a data inconsistency between parallel counts:
// questions vs rubrics after generation, results vs questions after grading,
// or parallel record arrays of unequal length. It is never auto-repaired.
type CountMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("data inconsistency: %s count %d does not match expected %d", e.What, e.Got, e.Want)
}

// IsInconsistency reports whether err is a data inconsistency condition.
func IsInconsistency(err error) bool {
	var cm *CountMismatchError
	return errors.As(err, &cm)
}
