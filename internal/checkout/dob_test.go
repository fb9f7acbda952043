package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vedaro/shopdesk/internal/shared"
)

func TestFormatDOBProgressiveMask(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"0", "0"},
		{"01", "01"},
		{"010", "01/0"},
		{"0102", "01/02"},
		{"01021", "01/02/1"},
		{"01021990", "01/02/1990"},
		{"010219901234", "01/02/1990"}, // truncated at 8 digits
		{"01/02/1990", "01/02/1990"},   // re-masking already masked input
		{"1a2b3c", "12/3"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatDOB(tc.input), "input %q", tc.input)
	}
}

func TestDOBToISO(t *testing.T) {
	iso, err := DOBToISO("01/02/1990")
	require.NoError(t, err)
	require.Equal(t, "1990-02-01", iso)

	iso, err = DOBToISO("")
	require.NoError(t, err)
	require.Empty(t, iso, "DOB is optional")

	_, err = DOBToISO("01/02/199")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = DOBToISO("01-02-1990")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = DOBToISO("0a/02/1990")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDOBFromISO(t *testing.T) {
	require.Equal(t, "01/02/1990", DOBFromISO("1990-02-01"))
	require.Empty(t, DOBFromISO("1990/02/01"))
	require.Empty(t, DOBFromISO(""))
}

func TestDOBMaskRoundTrip(t *testing.T) {
	masked := FormatDOB("01021990")
	require.Equal(t, "01/02/1990", masked)
	iso, err := DOBToISO(masked)
	require.NoError(t, err)
	require.Equal(t, "1990-02-01", iso)
	require.Equal(t, masked, DOBFromISO(iso))
}
