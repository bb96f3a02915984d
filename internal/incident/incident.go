// Package incident defines the 21-field incident record shape shared by the
// codec, the generator, and the exporter.
package incident

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in prompts, the cache, and the export.
const TimeLayout = "2006-01-02 15:04:05"

// NumberPrefix is the identifier prefix for generated incidents.
const NumberPrefix = "INC"

// ColumnNames is the fixed export column order. Every column maps 1:1 to an
// Incident field; the exporter must never reorder or rename these.
var ColumnNames = []string{
	"Number",
	"Top-Category",
	"Sub-Category",
	"Category",
	"Effort",
	"State",
	"Correlation ID",
	"Short Description",
	"Long Description",
	"Created",
	"Opened",
	"Closed",
	"Priority",
	"Urgency",
	"Impact",
	"Assignment group",
	"Resolution code",
	"Resolution notes",
	"Resolve time",
	"Business duration",
	"Business resolve time",
}

// Closed value sets for the enumerated fields. Any other value is a
// per-record validation failure.
var (
	Priorities = []string{"1 - Critical", "2 - High", "3 - Moderate", "4 - Low"}
	Urgencies  = []string{"1 - High", "2 - Medium", "3 - Low"}
	Impacts    = []string{"1 - High", "2 - Medium", "3 - Low"}
	States     = []string{"New", "In Progress", "On Hold", "Resolved", "Closed", "Canceled"}

	terminalStates = map[string]bool{
		"Resolved": true,
		"Closed":   true,
		"Canceled": true,
	}
)

// Minutes is a duration metric in whole minutes. LLMs emit these as floats,
// integers, or numeric strings; all are accepted and truncated. The values
// are recomputed from timestamps before acceptance, so lenient decoding here
// never leaks model-authored numbers into the export.
type Minutes int

// UnmarshalJSON accepts numbers and numeric strings. Anything unparsable
// decodes as zero rather than failing the record: the recomputation pass
// replaces the value regardless.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*m = 0
		return nil
	}
	*m = Minutes(int(f))
	return nil
}

// Incident is one synthetic incident record. JSON names match the export
// column headers exactly, including spaces, because the model is prompted
// with these names verbatim.
type Incident struct {
	Number              string  `json:"Number"`
	TopCategory         string  `json:"Top-Category"`
	SubCategory         string  `json:"Sub-Category"`
	Category            string  `json:"Category"`
	Effort              float64 `json:"Effort"`
	State               string  `json:"State"`
	CorrelationID       string  `json:"Correlation ID"`
	ShortDescription    string  `json:"Short Description"`
	LongDescription     string  `json:"Long Description"`
	Created             string  `json:"Created"`
	Opened              string  `json:"Opened"`
	Closed              string  `json:"Closed,omitempty"`
	Priority            string  `json:"Priority"`
	Urgency             string  `json:"Urgency"`
	Impact              string  `json:"Impact"`
	AssignmentGroup     string  `json:"Assignment group"`
	ResolutionCode      string  `json:"Resolution code,omitempty"`
	ResolutionNotes     string  `json:"Resolution notes,omitempty"`
	ResolveTime         Minutes `json:"Resolve time"`
	BusinessDuration    Minutes `json:"Business duration"`
	BusinessResolveTime Minutes `json:"Business resolve time"`
}

// FormatNumber renders a sequence value as a zero-padded incident identifier,
// e.g. FormatNumber(7) == "INC000007".
func FormatNumber(seq int) string {
	return fmt.Sprintf("%s%06d", NumberPrefix, seq)
}

// ParseNumber extracts the sequence value from an incident identifier.
// Returns 0 and false for anything that is not NumberPrefix followed by digits.
func ParseNumber(number string) (int, bool) {
	if !strings.HasPrefix(number, NumberPrefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, NumberPrefix))
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// IsTerminalState reports whether a state requires a Closed timestamp.
func IsTerminalState(state string) bool {
	return terminalStates[state]
}

// CheckInvariants verifies the cross-field constraints that the JSON Schema
// cannot express: timestamp ordering and the terminal-state/Closed coupling.
// Returns one message per violated constraint; an empty slice means the
// record is internally consistent.
func (in *Incident) CheckInvariants() []string {
	var problems []string

	created, err := time.Parse(TimeLayout, in.Created)
	if err != nil {
		problems = append(problems, fmt.Sprintf("Created %q is not a valid timestamp", in.Created))
	}
	opened, err2 := time.Parse(TimeLayout, in.Opened)
	if err2 != nil {
		problems = append(problems, fmt.Sprintf("Opened %q is not a valid timestamp", in.Opened))
	}
	if err == nil && err2 == nil && opened.Before(created) {
		problems = append(problems, "Opened precedes Created")
	}

	if IsTerminalState(in.State) {
		if in.Closed == "" {
			problems = append(problems, fmt.Sprintf("State %q requires a Closed timestamp", in.State))
		}
	} else if in.Closed != "" {
		problems = append(problems, fmt.Sprintf("State %q must not have a Closed timestamp", in.State))
	}

	if in.Closed != "" {
		closed, err3 := time.Parse(TimeLayout, in.Closed)
		if err3 != nil {
			problems = append(problems, fmt.Sprintf("Closed %q is not a valid timestamp", in.Closed))
		} else if err2 == nil && closed.Before(opened) {
			problems = append(problems, "Closed precedes Opened")
		}
	}

	if in.Effort < 0 {
		problems = append(problems, "Effort is negative")
	}

	return problems
}

// Row returns the record's values in ColumnNames order for tabular export.
// Duration cells are left empty when the incident has no Closed timestamp.
func (in *Incident) Row() []interface{} {
	closedCell := interface{}(in.Closed)
	resolveCell := interface{}(int(in.ResolveTime))
	durationCell := interface{}(int(in.BusinessDuration))
	businessResolveCell := interface{}(int(in.BusinessResolveTime))
	if in.Closed == "" {
		closedCell, resolveCell, durationCell, businessResolveCell = "", "", "", ""
	}
	return []interface{}{
		in.Number,
		in.TopCategory,
		in.SubCategory,
		in.Category,
		in.Effort,
		in.State,
		in.CorrelationID,
		in.ShortDescription,
		in.LongDescription,
		in.Created,
		in.Opened,
		closedCell,
		in.Priority,
		in.Urgency,
		in.Impact,
		in.AssignmentGroup,
		in.ResolutionCode,
		in.ResolutionNotes,
		resolveCell,
		durationCell,
		businessResolveCell,
	}
}

// Clone returns a copy of the incident. Used by the exporter so its
// derivation pass never mutates cached state.
func (in *Incident) Clone() Incident {
	return *in
}
