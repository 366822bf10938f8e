package edipay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	segments := []Segment{
		{Tag: "BGM", Elements: [][]string{{"351"}, {"Borrowing"}}},
		{Tag: "DTM", Elements: [][]string{{"137", "20260310", "102"}}},
		{Tag: "FTX", Elements: [][]string{{"AAI"}, {"Book Title"}, {"Snow Crash"}}},
	}

	raw := Encode(segments)
	assert.Equal(t, "BGM+351+Borrowing'DTM+137:20260310:102'FTX+AAI+Book Title+Snow Crash'", raw)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, segments, decoded)
}

func TestEncodeEscapesDelimiters(t *testing.T) {
	segments := []Segment{
		{Tag: "FTX", Elements: [][]string{{"AAI"}, {"Book Title"}, {"C++: What's+Next?"}}},
	}

	raw := Encode(segments)
	assert.Equal(t, "FTX+AAI+Book Title+C?+?+?: What?'s?+Next??'", raw)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "C++: What's+Next?", decoded[0].Comp(2, 0))
}

func TestDecodeToleratesWhitespaceBetweenSegments(t *testing.T) {
	decoded, err := Decode("BGM+351'\nSTS+success'\r\n")
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "STS", decoded[1].Tag)
	assert.Equal(t, "success", decoded[1].Elem(0))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"unterminated": "BGM+351",
		"dangling escape": "BGM+351?",
		"empty": "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			assert.Error(t, err)
		})
	}
}

func TestSegmentLookups(t *testing.T) {
	seg := Segment{Tag: "PID", Elements: [][]string{{"", "", "pay-42"}}}

	assert.Equal(t, "pay-42", seg.Comp(0, 2))
	assert.Equal(t, "", seg.Comp(0, 5), "out-of-range component reads as empty")
	assert.Equal(t, "", seg.Comp(3, 0), "out-of-range element reads as empty")
	assert.Equal(t, "", seg.Elem(1))
}

func TestSignatureRoundTrip(t *testing.T) {
	payload := []byte("BGM+351'STS+success'")

	sig := Sign("shared-secret", payload)
	assert.True(t, VerifySignature("shared-secret", payload, sig))
	assert.False(t, VerifySignature("other-secret", payload, sig))
	assert.False(t, VerifySignature("shared-secret", []byte("tampered"), sig))
}
