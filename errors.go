package bpcache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("bpcache: decode failed")

// DecodeError reports stored bytes the codec could not turn back into a value.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bpcache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// EncodeError reports a value the codec refused to serialize. No store I/O happened.
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("bpcache: encode %q: %v", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// KeyError pairs a caller key with the error its save produced.
type KeyError struct {
	Key string
	Err error
}

// CommitError lists the deferred saves that failed during Commit.
// Saves after a failure were still attempted.
type CommitError struct {
	Failures []KeyError
}

func (e *CommitError) Error() string {
	switch len(e.Failures) {
	case 0:
		return "bpcache: commit: unknown error"
	case 1:
		return fmt.Sprintf("bpcache: commit: save %q: %v", e.Failures[0].Key, e.Failures[0].Err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "bpcache: commit: %d saves failed:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, " %q: %v;", f.Key, f.Err)
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *CommitError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
