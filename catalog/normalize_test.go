package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeKnownTokens(t *testing.T) {
	require.Equal(t, TypeString, Normalize("picklist"))
	require.Equal(t, TypeString, Normalize("Text Area"))
	require.Equal(t, TypeNumber, Normalize("Currency"))
	require.Equal(t, TypeNumber, Normalize("percent"))
	require.Equal(t, TypeBoolean, Normalize("checkbox"))
	require.Equal(t, TypeDate, Normalize("date"))
	require.Equal(t, TypeDateTime, Normalize("dateTime"))
	require.Equal(t, TypeReference, Normalize("lookup"))
	require.Equal(t, TypeInteger, Normalize("int"))
}

func TestNormalizeTrimsAndFoldsCase(t *testing.T) {
	require.Equal(t, TypeDateTime, Normalize("  DATETIME \n"))
}

func TestNormalizeUnknownDefaultsToString(t *testing.T) {
	// fail-open: an unrecognized token must not break a batch
	for _, raw := range []string{"", "   ", "frobnicator", "複合型", "text<br>area"} {
		require.Equal(t, TypeString, Normalize(raw))
	}
}

func TestFormatFor(t *testing.T) {
	require.Equal(t, "email", FormatFor("Email"))
	require.Equal(t, "uri", FormatFor("url"))
	require.Equal(t, "", FormatFor("text"))
}
