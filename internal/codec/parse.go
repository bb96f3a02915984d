package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/incident-generator/internal/config"
	"github.com/jonathan/incident-generator/internal/incident"
	"github.com/jonathan/incident-generator/internal/llm"
	"github.com/jonathan/incident-generator/internal/schemas"
)

// SoftError records one dropped element from an otherwise usable batch.
// LLM output is untrusted, so per-record failures are a normal outcome of
// parsing, not a batch failure.
type SoftError struct {
	Index   int      // Position of the element in the returned array
	Reasons []string // One entry per violated constraint
}

func (e SoftError) String() string {
	return fmt.Sprintf("record %d dropped: %v", e.Index, e.Reasons)
}

// MalformedError means no usable JSON array could be located or parsed, or
// every element of it failed validation. The orchestrator retries the batch.
type MalformedError struct {
	Message string
	Snippet string // Leading part of the raw response, for the operator
}

func (e *MalformedError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("malformed response: %s (content: %s)", e.Message, e.Snippet)
	}
	return fmt.Sprintf("malformed response: %s", e.Message)
}

// ParseResponse extracts the JSON array from raw model output, parses each
// element independently, and validates it against the incident schema, the
// cross-field invariants, and the taxonomy. Elements that fail validation
// are dropped and reported as soft errors; accepted records have their
// duration metrics recomputed from their timestamps. The batch fails with a
// *MalformedError only when no array parses or no element survives.
func ParseResponse(raw string, taxonomy *config.Taxonomy) ([]incident.Incident, []SoftError, error) {
	arrayText, ok := llm.ExtractJSONArray(raw)
	if !ok {
		return nil, nil, &MalformedError{
			Message: "no JSON array found in response",
			Snippet: snippet(raw),
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(arrayText), &elements); err != nil {
		return nil, nil, &MalformedError{
			Message: fmt.Sprintf("JSON array did not parse: %v", err),
			Snippet: snippet(arrayText),
		}
	}
	if len(elements) == 0 {
		return nil, nil, &MalformedError{Message: "response array is empty"}
	}

	var records []incident.Incident
	var softErrors []SoftError
	for i, element := range elements {
		rec, reasons := decodeElement(element, taxonomy)
		if len(reasons) > 0 {
			softErrors = append(softErrors, SoftError{Index: i, Reasons: reasons})
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, softErrors, &MalformedError{
			Message: fmt.Sprintf("all %d records failed validation", len(elements)),
		}
	}
	return records, softErrors, nil
}

// decodeElement validates and decodes a single array element. The returned
// reasons are empty iff the record is acceptable.
func decodeElement(element json.RawMessage, taxonomy *config.Taxonomy) (incident.Incident, []string) {
	var rec incident.Incident

	if err := schemas.ValidateIncidentDocument(element); err != nil {
		return rec, schemaReasons(err)
	}

	if err := json.Unmarshal(element, &rec); err != nil {
		return rec, []string{fmt.Sprintf("record did not decode: %v", err)}
	}

	if reasons := rec.CheckInvariants(); len(reasons) > 0 {
		return rec, reasons
	}

	if taxonomy != nil && !taxonomy.Empty() {
		if ok, reason := taxonomy.Allows(rec.TopCategory, rec.SubCategory, rec.Category); !ok {
			return rec, []string{reason}
		}
	}

	// Durations are derived, never taken from the model.
	if err := rec.RecomputeDurations(); err != nil {
		return rec, []string{fmt.Sprintf("deriving durations: %v", err)}
	}
	return rec, nil
}

func schemaReasons(err error) []string {
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		reasons := make([]string, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			reasons = append(reasons, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return reasons
	}
	return []string{err.Error()}
}

const snippetLen = 200

func snippet(raw string) string {
	if len(raw) <= snippetLen {
		return raw
	}
	return raw[:snippetLen] + "..."
}
