// Package constants provides a centralized location for the configuration
// values and magic numbers used throughout glance.
package constants

import "time"

// Remote call constants
const (
	// RemoteCallTimeout bounds every single GitHub API call. Expiry is
	// treated as a retryable network error.
	RemoteCallTimeout = 30 * time.Second

	// ReadAttempts is the number of attempts made for idempotent reads
	// (issue search, file read). Writes are never retried.
	ReadAttempts = 3

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay = 500 * time.Millisecond

	// SearchPerPage is the page size used for issue searches.
	SearchPerPage = 100

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Configuration defaults
const (
	// DefaultConfigPath is used when --conf is not given.
	DefaultConfigPath = "./glance.yml"

	// DefaultFilter is the base search filter of an entry.
	DefaultFilter = "is:open"

	// TokenFileName is looked up beside the configuration file when no
	// other token source is set.
	TokenFileName = "github_token.txt"

	// DefaultWorkers is the number of configuration entries processed
	// concurrently.
	DefaultWorkers = 4
)

// Report constants
const (
	// CommitMessage is used for every report create/update.
	CommitMessage = "Updated by Glance"

	// PublishThreshold is the weight an issue must exceed to be ranked.
	PublishThreshold = 1.0

	// DueDateLayout formats due dates substituted into title suffixes.
	DueDateLayout = "2006-01-02"
)

// Progress constants
const (
	// ProgressInterval is the minimum time between logged progress updates.
	ProgressInterval = 500 * time.Millisecond

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)

// Output constants
const (
	// DurationPrecision rounds entry durations in run summaries.
	DurationPrecision = 10 * time.Millisecond

	// TitleColumnWidth is the widest a title may be in the ranking table.
	TitleColumnWidth = 60

	// RepoColumnWidth is the widest a repository may be in the ranking table.
	RepoColumnWidth = 28
)
