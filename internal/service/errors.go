package service

import "errors"

// Expected business outcomes of the attempt lifecycle. Everything else that
// bubbles up from the store is treated as an internal failure and surfaced
// generically by the controllers.
var (
	ErrExamNotFound         = errors.New("exam not found")
	ErrNotInRoster          = errors.New("student not in allowed list")
	ErrExamNotStarted       = errors.New("exam not started yet")
	ErrExamEnded            = errors.New("exam has ended")
	ErrAlreadyAttempted     = errors.New("exam already attempted")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptClosed        = errors.New("attempt is closed")
	ErrTimeExpired          = errors.New("submission time expired")
	ErrQuestionNotInAttempt = errors.New("question not part of this attempt")
	ErrExamImmutable        = errors.New("exam already has attempts and cannot be modified")
	ErrResultsNotAvailable  = errors.New("results not available until the attempt is finalized or the exam ends")
)
