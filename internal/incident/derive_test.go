package incident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(TimeLayout, value)
	require.NoError(t, err)
	return ts
}

func TestBusinessMinutes(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{
			// 2024-03-04 is a Monday
			name:  "same business day",
			start: "2024-03-04 09:00:00",
			end:   "2024-03-04 11:30:00",
			want:  150,
		},
		{
			name:  "clipped to opening hours",
			start: "2024-03-04 06:00:00",
			end:   "2024-03-04 09:00:00",
			want:  60,
		},
		{
			name:  "spans a weekend",
			start: "2024-03-08 16:00:00", // Friday
			end:   "2024-03-11 09:00:00", // Monday
			want:  120,
		},
		{
			name:  "entirely on a weekend",
			start: "2024-03-09 10:00:00", // Saturday
			end:   "2024-03-09 12:00:00",
			want:  0,
		},
		{
			name:  "end before start",
			start: "2024-03-04 12:00:00",
			end:   "2024-03-04 09:00:00",
			want:  0,
		},
		{
			name:  "full business day",
			start: "2024-03-04 00:00:00",
			end:   "2024-03-04 23:59:59",
			want:  540,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := businessMinutes(mustParse(t, tt.start), mustParse(t, tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecomputeDurations(t *testing.T) {
	in := validIncident()
	// Model-authored numbers must be overwritten.
	in.ResolveTime = 9999
	in.BusinessDuration = 9999
	in.BusinessResolveTime = 9999

	require.NoError(t, in.RecomputeDurations())

	assert.Equal(t, Minutes(150), in.ResolveTime)         // 09:00 -> 11:30
	assert.Equal(t, Minutes(195), in.BusinessDuration)    // 08:15 -> 11:30 within business hours
	assert.Equal(t, Minutes(150), in.BusinessResolveTime) // 09:00 -> 11:30 within business hours
}

func TestRecomputeDurations_Idempotent(t *testing.T) {
	in := validIncident()
	require.NoError(t, in.RecomputeDurations())
	first := in

	require.NoError(t, in.RecomputeDurations())
	assert.Equal(t, first, in)
}

func TestRecomputeDurations_NoClosed(t *testing.T) {
	in := validIncident()
	in.State = "In Progress"
	in.Closed = ""
	in.ResolveTime = 42

	require.NoError(t, in.RecomputeDurations())
	assert.Equal(t, Minutes(0), in.ResolveTime)
	assert.Equal(t, Minutes(0), in.BusinessDuration)
	assert.Equal(t, Minutes(0), in.BusinessResolveTime)
}

func TestRecomputeDurations_BadTimestamp(t *testing.T) {
	in := validIncident()
	in.Opened = "not a timestamp"
	assert.Error(t, in.RecomputeDurations())
}
