package mqhandler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJobID(t *testing.T) {
	require.EqualValues(t, 42, extractJobID(json.RawMessage(`{"job_id":42,"employer":"addr:e"}`)))

	// registry events carry no job id and audit under 0
	require.EqualValues(t, 0, extractJobID(json.RawMessage(`{"freelancer_id":3}`)))
	require.EqualValues(t, 0, extractJobID(json.RawMessage(`not json`)))
}
