package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/SAP-F-2025/exam-service/internal/services"
)

// PolicyFile mirrors services.SubmissionPolicy in TOML. Unset keys keep their
// defaults; durations use time.ParseDuration syntax ("30s", "5m").
type PolicyFile struct {
	Submission struct {
		ViolationThreshold *int    `toml:"violation_threshold"`
		EnforceDeadline    *bool   `toml:"enforce_deadline"`
		DeadlineGrace      *string `toml:"deadline_grace"`
	} `toml:"submission"`

	Sweeper struct {
		Interval  *string `toml:"interval"`
		BatchSize *int    `toml:"batch_size"`
	} `toml:"sweeper"`

	Cache struct {
		ExamTTL *string `toml:"exam_ttl"`
	} `toml:"cache"`
}

// LoadPolicy returns the default submission policy overridden by the TOML file
// at path. An empty path yields the defaults.
func LoadPolicy(path string) (services.SubmissionPolicy, error) {
	policy := services.DefaultSubmissionPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("error reading policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy applies a TOML document onto the default submission policy.
func ParsePolicy(data []byte) (services.SubmissionPolicy, error) {
	policy := services.DefaultSubmissionPolicy()

	var file PolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return policy, fmt.Errorf("error parsing policy file: %w", err)
	}

	if v := file.Submission.ViolationThreshold; v != nil {
		if *v < 1 {
			return policy, fmt.Errorf("submission.violation_threshold must be at least 1, got %d", *v)
		}
		policy.ViolationThreshold = *v
	}
	if v := file.Submission.EnforceDeadline; v != nil {
		policy.EnforceDeadline = *v
	}
	if err := setDuration(&policy.DeadlineGrace, "submission.deadline_grace", file.Submission.DeadlineGrace); err != nil {
		return policy, err
	}
	if err := setDuration(&policy.SweepInterval, "sweeper.interval", file.Sweeper.Interval); err != nil {
		return policy, err
	}
	if v := file.Sweeper.BatchSize; v != nil {
		if *v < 1 {
			return policy, fmt.Errorf("sweeper.batch_size must be at least 1, got %d", *v)
		}
		policy.SweepBatchSize = *v
	}
	if err := setDuration(&policy.ExamCacheTTL, "cache.exam_ttl", file.Cache.ExamTTL); err != nil {
		return policy, err
	}

	return policy, nil
}

func setDuration(dst *time.Duration, key string, value *string) error {
	if value == nil {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", key, d)
	}
	*dst = d
	return nil
}
