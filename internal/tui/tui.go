package tui

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ciEnv lists variables whose presence means no one is watching the terminal.
var ciEnv = []string{"CI", "GITHUB_ACTIONS", "JENKINS_URL", "TRAVIS", "CIRCLECI", "GITLAB_CI", "BUILDKITE"}

// Run renders progress for the given entry keys inline and blocks until
// the event channel is closed or a DoneEvent arrives.
func Run(events <-chan Event, keys []string) error {
	_, err := tea.NewProgram(NewModel(events, keys)).Run()
	return err
}

// Available reports whether stdout is an interactive terminal outside CI.
func Available() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	for _, v := range ciEnv {
		if os.Getenv(v) != "" {
			return false
		}
	}
	return true
}

// Reporter turns entry lifecycle steps into display events. A nil Reporter,
// or one without a channel, drops everything. Sends never block: when the
// display falls behind, intermediate steps are lost.
type Reporter struct {
	ch chan<- Event
}

// NewReporter returns a Reporter sending to ch.
func NewReporter(ch chan<- Event) *Reporter {
	return &Reporter{ch: ch}
}

// Waiting marks key as blocked on the ranking of parent.
func (r *Reporter) Waiting(key, parent string) {
	r.send(TaskEvent{Key: key, Status: StatusRunning, Message: "waiting for " + parent})
}

// Ranking marks key as being ranked.
func (r *Reporter) Ranking(key string) {
	r.send(TaskEvent{Key: key, Status: StatusRunning, Message: "ranking"})
}

// Publishing marks key as writing its report of count issues.
func (r *Reporter) Publishing(key string, count int) {
	r.send(TaskEvent{Key: key, Status: StatusRunning, Message: "publishing", Count: count})
}

// Ranked finishes key without publishing.
func (r *Reporter) Ranked(key string, count int) {
	r.send(TaskEvent{Key: key, Status: StatusSkipped, Message: "ranked", Count: count})
}

// Published finishes key with the publish outcome.
func (r *Reporter) Published(key, outcome string, count int) {
	r.send(TaskEvent{Key: key, Status: StatusComplete, Message: outcome, Count: count})
}

// Failed finishes key with err.
func (r *Reporter) Failed(key string, err error) {
	r.send(TaskEvent{Key: key, Status: StatusError, Error: err})
}

// RateLimited shows the rate limit banner until resetAt.
func (r *Reporter) RateLimited(resetAt time.Time) {
	r.send(RateLimitEvent{Limited: true, ResetAt: resetAt})
}

func (r *Reporter) send(e Event) {
	if r == nil || r.ch == nil {
		return
	}
	select {
	case r.ch <- e:
	default:
	}
}
