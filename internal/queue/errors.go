package queue

import "errors"

// ErrorClassifier allows errors to declare their classification for status
// mapping without this package depending on where they were produced.
type ErrorClassifier interface {
	// ErrorKind returns a string classification of the error. Kinds that map
	// to StatusReview: "validation", "configuration", "not_found", "parse".
	// All other kinds map to StatusFailed.
	ErrorKind() string
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails. Validation, configuration, parse, and
// not-found failures need operator attention and land in review; everything
// else is retryable and lands in failed.
func FailureStatus(err error) Status {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		switch classifier.ErrorKind() {
		case "validation", "configuration", "not_found", "parse":
			return StatusReview
		}
	}
	return StatusFailed
}
