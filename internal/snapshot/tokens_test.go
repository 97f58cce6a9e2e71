package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleHierarchy = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <android.widget.FrameLayout text="">
    <android.widget.TextView text="Booking #MJR12345678" />
    <android.widget.TextView text="&#163;120.00" />
    <android.view.ViewGroup content-desc="MJA87654321, Remote, English to Polish">
      <android.widget.TextView text="English to Polish" />
    </android.view.ViewGroup>
    <android.widget.TextView text="  Acme Ltd  " />
    <android.widget.TextView text="Line one&#10;Line two" />
    <android.widget.TextView text="   " />
  </android.widget.FrameLayout>
</hierarchy>`

func TestTokens(t *testing.T) {
	tokens := Tokens(sampleHierarchy)

	assert.Equal(t, []string{
		"Booking #MJR12345678",
		"£120.00",
		"English to Polish",
		"Acme Ltd",
		"Line one",
		"Line two",
	}, tokens)
}

func TestTokensMalformedSourceKeepsDecodedPrefix(t *testing.T) {
	truncated := `<hierarchy><node text="first" /><node text="second"`

	tokens := Tokens(truncated)

	assert.Equal(t, []string{"first"}, tokens)
}

func TestTokensEmptySource(t *testing.T) {
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens("not xml at all"))
}

func TestDescs(t *testing.T) {
	descs := Descs(sampleHierarchy)

	assert.Equal(t, []string{"MJA87654321, Remote, English to Polish"}, descs)
}

func TestContainsToken(t *testing.T) {
	assert.True(t, ContainsToken(sampleHierarchy, "Booking #MJR"))
	assert.False(t, ContainsToken(sampleHierarchy, "Multiday"))
}
