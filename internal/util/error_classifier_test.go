package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	var decodeErr error = func() error {
		return json.Unmarshal([]byte("{"), &struct{}{})
	}()

	cases := []struct {
		name      string
		err       error
		retryable bool
		label     string
	}{
		{"nil", nil, false, ""},
		{"json decode", decodeErr, false, "json_decode_error"},
		{"missing row", fmt.Errorf("lookup: %w", pgx.ErrNoRows), false, "row_not_found"},
		{"duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "job_events_pkey"`), false, "duplicate_key"},
		{"timeout", context.DeadlineExceeded, true, "timeout"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true, "connection_error"},
		{"unknown", errors.New("something odd"), true, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retryable, label := IsRetryableError(tc.err)
			require.Equal(t, tc.retryable, retryable)
			require.Equal(t, tc.label, label)
		})
	}
}
