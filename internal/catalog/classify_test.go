package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyAvailabilityStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Availability
	}{
		{name: "borrowable", text: "... Borrow this title ...", want: Available},
		{name: "all copies out", text: "Place Hold to join the wait list", want: Owned},
		{name: "not in catalog", text: "No results. Try a different search.", want: NotFound},
		{name: "no marker", text: "Something went wrong loading this page", want: Unknown},
		{name: "empty page", text: "", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.text).Availability)
		})
	}
}

func TestClassifyPriorityOrdering(t *testing.T) {
	t.Parallel()

	// "No results." pre-empts "Borrow", which pre-empts "Place Hold",
	// even when several markers co-occur on one page.
	require.Equal(t, NotFound, Classify("No results. Borrow Place Hold").Availability)
	require.Equal(t, Available, Classify("Borrow Place Hold").Availability)
}

func TestClassifyFormatFlags(t *testing.T) {
	t.Parallel()

	c := Classify("... Borrow this title ... Play Sample ...")
	require.Equal(t, Available, c.Availability)
	require.True(t, c.Audiobook)
	require.False(t, c.Ebook)

	c = Classify("Read Sample then Place Hold")
	require.Equal(t, Owned, c.Availability)
	require.False(t, c.Audiobook)
	require.True(t, c.Ebook)
}

func TestClassifyFlagsIndependentOfAvailability(t *testing.T) {
	t.Parallel()

	// Flags are never gated on the availability branch.
	c := Classify("No results. Play Sample")
	require.Equal(t, NotFound, c.Availability)
	require.True(t, c.Audiobook)

	c = Classify("Play Sample and Read Sample, nothing else recognized")
	require.Equal(t, Unknown, c.Availability)
	require.True(t, c.Audiobook)
	require.True(t, c.Ebook)
}
