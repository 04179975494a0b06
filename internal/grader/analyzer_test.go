package grader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesAndStrips(t *testing.T) {
	require.Equal(t, "mixed case text", Normalize("  Mixed   CASE\tText!! "))
	require.Equal(t, "", Normalize(""))
	require.Equal(t, "a, b: 10%", Normalize("A,\nB:  10%"))
}

func TestExtractKeywordsFiltersStopWords(t *testing.T) {
	keywords := ExtractKeywords("The Average Waiting Time")
	require.Equal(t, []string{"average", "waiting", "time"}, keywords)
}

func TestExtractKeywordsDeduplicatesAndCaps(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta theta kappa sigma omega lambda2 micron extra1 extra2 alpha beta"
	keywords := ExtractKeywords(text)
	require.Len(t, keywords, 12)
	require.Equal(t, "alpha", keywords[0])

	seen := map[string]bool{}
	for _, word := range keywords {
		require.False(t, seen[word])
		seen[word] = true
	}
}

func TestExtractKeywordsDropsShortTokens(t *testing.T) {
	require.Empty(t, ExtractKeywords("a an is to of"))
}

func TestCoverage(t *testing.T) {
	require.InDelta(t, 1.0, Coverage("Average waiting time", "the average waiting time is 4.2"), 1e-9)
	require.InDelta(t, 0.5, Coverage("average turnaround", "only the average appears"), 1e-9)
	require.Zero(t, Coverage("", "anything"))
	require.Zero(t, Coverage("abc", "abc"))
}
