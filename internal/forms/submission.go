package forms

import "sync"

// Submission is the handle of an asynchronous form submission. It completes
// exactly once and cannot be cancelled.
type Submission[T any] struct {
	done   chan struct{}
	once   sync.Once
	result T
	err    error
}

// NewSubmission returns a pending submission.
func NewSubmission[T any]() *Submission[T] {
	return &Submission[T]{done: make(chan struct{})}
}

// Completed returns a submission that has already finished.
func Completed[T any](result T, err error) *Submission[T] {
	s := NewSubmission[T]()
	s.Complete(result, err)
	return s
}

// Complete records the outcome. Later calls are ignored.
func (s *Submission[T]) Complete(result T, err error) {
	s.once.Do(func() {
		s.result = result
		s.err = err
		close(s.done)
	})
}

// Done is closed when the submission finishes.
func (s *Submission[T]) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission finishes and returns its outcome.
func (s *Submission[T]) Wait() (T, error) {
	<-s.done
	return s.result, s.err
}
