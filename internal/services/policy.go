package services

import "time"

// SubmissionPolicy tunes the submission lifecycle.
type SubmissionPolicy struct {
	// ViolationThreshold is the violation count that force-ends a submission.
	ViolationThreshold int
	// EnforceDeadline finalizes expired submissions when they are next touched.
	EnforceDeadline bool
	// DeadlineGrace absorbs client clock skew and network latency past the deadline.
	DeadlineGrace time.Duration
	// SweepInterval is how often the background sweeper runs; zero disables it.
	SweepInterval  time.Duration
	SweepBatchSize int
	// ExamCacheTTL bounds how long exam documents stay cached.
	ExamCacheTTL time.Duration
}

func DefaultSubmissionPolicy() SubmissionPolicy {
	return SubmissionPolicy{
		ViolationThreshold: 2,
		EnforceDeadline:    true,
		DeadlineGrace:      30 * time.Second,
		SweepInterval:      time.Minute,
		SweepBatchSize:     100,
		ExamCacheTTL:       5 * time.Minute,
	}
}

// expired reports whether an in-progress deadline has passed, grace included.
func (p SubmissionPolicy) expired(deadline, now time.Time) bool {
	return p.EnforceDeadline && now.After(deadline.Add(p.DeadlineGrace))
}
