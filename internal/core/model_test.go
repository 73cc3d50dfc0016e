package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRecord_TimestampMillisecondPrecision(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC)
	tests := []struct {
		offset time.Duration
		want   string
	}{
		{0, "2024-03-01T12:00:01.000Z"},
		{120 * time.Millisecond, "2024-03-01T12:00:01.120Z"},
		{123 * time.Millisecond, "2024-03-01T12:00:01.123Z"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			record := &ScanRecord{ID: "id-1", Timestamp: base.Add(tt.offset), Type: AnalysisScam}

			data, err := json.Marshal(record)
			require.NoError(t, err)

			var raw map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, tt.want, raw["timestamp"])
			assert.Equal(t, "id-1", raw["id"])
			assert.Contains(t, raw, "suggestedSources")

			var decoded ScanRecord
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.True(t, record.Timestamp.Equal(decoded.Timestamp))
		})
	}
}

func TestScanRecord_TimestampConvertedToUTC(t *testing.T) {
	local := time.Date(2024, 3, 1, 14, 0, 1, 5e6, time.FixedZone("CEST", 2*60*60))

	data, err := json.Marshal(ScanRecord{Timestamp: local})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"timestamp":"2024-03-01T12:00:01.005Z"`)
}
