package client

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/healthmate/internal/models"
)

func TestPromptVital(t *testing.T) {
	var out bytes.Buffer
	v, err := PromptVital(strings.NewReader("120\n80\n72\n98\n98.6\n165\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 120, *v.Systolic)
	assert.Equal(t, 80, *v.Diastolic)
	assert.Equal(t, 72, *v.HeartRate)
	assert.Equal(t, 98, *v.SpO2)
	assert.Equal(t, 98.6, *v.Temperature)
	assert.Equal(t, 165, *v.Weight)
	assert.True(t, v.Timestamp.Time.IsZero())
	assert.Contains(t, out.String(), "Enter Systolic (mmHg): ")
	assert.Contains(t, out.String(), "Enter Weight (lbs): ")
}

func TestPromptVital_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not a number", "abc\n", models.ErrInvalidInput},
		{"bad temperature", "120\n80\n72\n98\nwarm\n", models.ErrInvalidInput},
		{"out of range", "120\n80\n72\n150\n98.6\n165\n", models.ErrInvalidInput},
		{"truncated", "120\n80\n", io.ErrUnexpectedEOF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PromptVital(strings.NewReader(tc.input), io.Discard)
			assert.True(t, errors.Is(err, tc.want), "err = %v; want %v", err, tc.want)
		})
	}
}
