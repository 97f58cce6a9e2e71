package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecondary(t *testing.T) {
	e := newTestExtractor()

	info := e.ParseSecondary(
		[]string{
			"navigation bar",
			"MJR12345678, Face to face, Appointments : 3",
		},
		[]string{"Back", "Booking #MJB11223344", "Accept"},
	)

	require.NotNil(t, info.OrderRef)
	assert.Equal(t, "MJR12345678", *info.OrderRef)
	require.NotNil(t, info.CreationRef)
	assert.Equal(t, "MJB11223344", *info.CreationRef)
	require.NotNil(t, info.TypeHint)
	assert.Equal(t, TypeHintFaceToFace, *info.TypeHint)
	assert.Equal(t, 3, info.AppointmentCountHint)
}

func TestParseSecondaryCountDefaultsToOne(t *testing.T) {
	e := newTestExtractor()

	info := e.ParseSecondary(
		[]string{"MJR99990000, Video remote interpreting"},
		nil,
	)

	require.NotNil(t, info.OrderRef)
	assert.Equal(t, "MJR99990000", *info.OrderRef)
	require.NotNil(t, info.TypeHint)
	assert.Equal(t, TypeHintVideoRemote, *info.TypeHint)
	assert.Equal(t, 1, info.AppointmentCountHint)
	assert.Nil(t, info.CreationRef)
}

func TestParseSecondaryUnknownTypeHintKeptVerbatim(t *testing.T) {
	e := newTestExtractor()

	info := e.ParseSecondary(
		[]string{"MJR11112222, Telephone, Appointments : 1"},
		nil,
	)

	require.NotNil(t, info.TypeHint)
	assert.Equal(t, "Telephone", *info.TypeHint)
}

func TestParseSecondaryNothingFound(t *testing.T) {
	e := newTestExtractor()

	info := e.ParseSecondary([]string{"nothing useful"}, []string{"still nothing"})

	assert.Nil(t, info.OrderRef)
	assert.Nil(t, info.CreationRef)
	assert.Nil(t, info.TypeHint)
	assert.Equal(t, 1, info.AppointmentCountHint)
}
