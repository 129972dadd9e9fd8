package hwlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

var defaultCandidates = []string{"utf-8-sig", "utf-8", "windows-1252", "latin-1"}

func encodeLatin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestResolveEncodingUTF8BOM(t *testing.T) {
	header := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Time,Temp [°C]")...)

	dec, cols, err := resolveEncoding(header, defaultCandidates)
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", dec.name)
	require.Len(t, cols, 1)
	assert.Equal(t, "Temp [°C]", cols[0].def.Column())
}

func TestResolveEncodingPlainUTF8(t *testing.T) {
	dec, cols, err := resolveEncoding([]byte("Date,Time,Temp [°C]"), defaultCandidates)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", dec.name)
	assert.Equal(t, "°C", cols[0].def.Unit)
}

func TestResolveEncodingLegacyCodePage(t *testing.T) {
	raw := encodeLatin1(t, "Date,Time,Temp [°C]")

	dec, cols, err := resolveEncoding(raw, defaultCandidates)
	require.NoError(t, err)
	// The degree sign is not valid UTF-8 here, so a single-byte code page
	// must win; windows-1252 precedes latin-1 in the candidate list.
	assert.Equal(t, "windows-1252", dec.name)
	assert.Equal(t, "°C", cols[0].def.Unit)
}

func TestResolveEncodingLocksCandidateOrder(t *testing.T) {
	raw := encodeLatin1(t, "Date,Time,Temp [°C]")

	dec, _, err := resolveEncoding(raw, []string{"utf-8", "latin-1", "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "latin-1", dec.name)
}

func TestResolveEncodingAllCandidatesFail(t *testing.T) {
	// Valid text but not a header: every candidate decodes it yet none can
	// parse a header out of it.
	_, _, err := resolveEncoding([]byte("not,a header"), defaultCandidates)
	assert.Error(t, err)
}

func TestResolveEncodingUnknownNamesSkipped(t *testing.T) {
	dec, _, err := resolveEncoding([]byte("Date,Time,Load [%]"), []string{"utf-99", "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", dec.name)
}

func TestDecodeUTF8SigRequiresBOM(t *testing.T) {
	_, err := decodeUTF8Sig([]byte("Date,Time,Temp"))
	assert.Error(t, err)
}
