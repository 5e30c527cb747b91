package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Player string `json:"player"`
	Board  []int  `json:"board"`
}

func TestRoundTrip(t *testing.T) {
	in := payload{Player: "31337", Board: []int{0, 1, 2, 1, 0}}

	token, err := Encode(in)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	var out payload
	require.True(t, Decode(token, &out))
	assert.Equal(t, in, out)
}

func TestTokenIsURLSafe(t *testing.T) {
	token, err := Encode(map[string]string{"k": strings.Repeat("data", 200)})
	require.NoError(t, err)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestDecodeTolerantOfPadding(t *testing.T) {
	token, err := Encode(payload{Player: "1"})
	require.NoError(t, err)

	// Some clients re-pad base64 on the way through.
	padded := token + strings.Repeat("=", (4-len(token)%4)%4)
	var out payload
	require.True(t, Decode(padded, &out))
	assert.Equal(t, "1", out.Player)
}

func TestDecodeFailuresAreAbsence(t *testing.T) {
	var out payload
	assert.False(t, Decode("", &out))
	assert.False(t, Decode("not base64 at all!!!", &out))
	// Valid base64, not zlib.
	assert.False(t, Decode("aGVsbG8gd29ybGQ", &out))

	// Valid token for a different shape still decodes as JSON allows;
	// structurally impossible input must not.
	token, err := Encode("just a string")
	require.NoError(t, err)
	assert.False(t, Decode(token, &out))
}

func TestDecodeMap(t *testing.T) {
	token, err := Encode(map[string]any{"inviter_id": "5", "n": 3.0})
	require.NoError(t, err)

	m, ok := DecodeMap(token)
	require.True(t, ok)
	assert.Equal(t, "5", m["inviter_id"])
	assert.Equal(t, 3.0, m["n"])
}
