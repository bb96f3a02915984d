// Package generator drives the batch generation loop: requesting records
// from the provider, validating them, and checkpointing progress.
package generator

import (
	"github.com/google/uuid"

	"github.com/jonathan/incident-generator/internal/incident"
)

// State is the accumulated run progress. It is owned by the Orchestrator;
// the store only serializes and deserializes it.
type State struct {
	RunID   uuid.UUID           `json:"run_id"`
	Target  int                 `json:"target"`
	Records []incident.Incident `json:"records"`
}

// NewState creates an empty state for a fresh run.
func NewState(target int) *State {
	return &State{
		RunID:  uuid.New(),
		Target: target,
	}
}

// Count returns the number of accepted records so far.
func (s *State) Count() int {
	return len(s.Records)
}

// Remaining returns how many records are still needed.
func (s *State) Remaining() int {
	if r := s.Target - len(s.Records); r > 0 {
		return r
	}
	return 0
}

// Done reports whether the target has been reached.
func (s *State) Done() bool {
	return len(s.Records) >= s.Target
}

// NextSequence returns the sequence value the next accepted record will get:
// one past the highest Number already assigned. Scanning the max rather than
// using len keeps numbering monotonic even if the cache was trimmed by hand.
func (s *State) NextSequence() int {
	max := 0
	for i := range s.Records {
		if seq, ok := incident.ParseNumber(s.Records[i].Number); ok && seq > max {
			max = seq
		}
	}
	return max + 1
}

// Append accepts a validated batch, assigning sequential identifiers that
// continue from the running maximum. Model-authored Number values are
// discarded: uniqueness across batch boundaries is this function's job,
// not the model's.
func (s *State) Append(records []incident.Incident) {
	seq := s.NextSequence()
	for i := range records {
		records[i].Number = incident.FormatNumber(seq)
		seq++
	}
	s.Records = append(s.Records, records...)
}
