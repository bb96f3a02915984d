package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/incident-generator/internal/incident"
)

func closedRecord(number string) incident.Incident {
	return incident.Incident{
		Number:           number,
		TopCategory:      "Hardware",
		SubCategory:      "Desktop",
		Category:         "Monitor defect",
		Effort:           1.5,
		State:            "Closed",
		CorrelationID:    "CORR-2024-000042",
		ShortDescription: "Monitor shows no image",
		LongDescription:  "The user's monitor stays black after boot.",
		Created:          "2024-03-04 08:15:00",
		Opened:           "2024-03-04 09:00:00",
		Closed:           "2024-03-04 11:30:00",
		Priority:         "3 - Moderate",
		Urgency:          "2 - Medium",
		Impact:           "2 - Medium",
		AssignmentGroup:  "IT Support Level 1",
		ResolutionCode:   "Solved (Permanently)",
		ResolutionNotes:  "Swapped the display cable.",
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(nil, path))

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, incident.ColumnNames, rows[0])
}

func TestWriteXLSX_RecordsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	records := []incident.Incident{
		closedRecord("INC000001"),
		closedRecord("INC000002"),
		closedRecord("INC000003"),
	}
	require.NoError(t, WriteXLSX(records, path))

	rows := readRows(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "INC000001", rows[1][0])
	assert.Equal(t, "INC000002", rows[2][0])
	assert.Equal(t, "INC000003", rows[3][0])
}

func TestWriteXLSX_ColumnValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX([]incident.Incident{closedRecord("INC000001")}, path))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	row := rows[1]
	require.Len(t, row, len(incident.ColumnNames))

	byColumn := make(map[string]string, len(row))
	for i, name := range incident.ColumnNames {
		byColumn[name] = row[i]
	}
	assert.Equal(t, "Hardware", byColumn["Top-Category"])
	assert.Equal(t, "Desktop", byColumn["Sub-Category"])
	assert.Equal(t, "1.5", byColumn["Effort"])
	assert.Equal(t, "Closed", byColumn["State"])
	assert.Equal(t, "2024-03-04 11:30:00", byColumn["Closed"])
	assert.Equal(t, "Solved (Permanently)", byColumn["Resolution code"])
}

func TestWriteXLSX_RecomputesDurations(t *testing.T) {
	rec := closedRecord("INC000001")
	rec.ResolveTime = 99999 // stale metric, must not survive export
	rec.BusinessDuration = 1

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX([]incident.Incident{rec}, path))

	rows := readRows(t, path)
	row := rows[1]
	assert.Equal(t, "150", row[18]) // Resolve time: 09:00 -> 11:30
	assert.Equal(t, "195", row[19]) // Business duration: 08:15 -> 11:30
	assert.Equal(t, "150", row[20]) // Business resolve time
}

func TestWriteXLSX_OpenIncidentHasEmptyDurations(t *testing.T) {
	rec := closedRecord("INC000001")
	rec.State = "In Progress"
	rec.Closed = ""
	rec.ResolutionCode = ""
	rec.ResolutionNotes = ""

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX([]incident.Incident{rec}, path))

	rows := readRows(t, path)
	row := rows[1]
	// Trailing empty cells are trimmed when reading back.
	assert.LessOrEqual(t, len(row), 18)
	assert.Equal(t, "In Progress", row[5])
}

func TestWriteXLSX_InputRecordsUntouched(t *testing.T) {
	rec := closedRecord("INC000001")
	rec.ResolveTime = 99999

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX([]incident.Incident{rec}, path))

	assert.EqualValues(t, 99999, rec.ResolveTime, "export must work on a copy")
}

func TestWriteXLSX_BadTimestampFails(t *testing.T) {
	rec := closedRecord("INC000001")
	rec.Opened = "yesterday"

	path := filepath.Join(t.TempDir(), "out.xlsx")
	err := WriteXLSX([]incident.Incident{rec}, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INC000001")
}
