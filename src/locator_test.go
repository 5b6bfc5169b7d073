package ft8modem

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGridToLatLng(t *testing.T) {
	var lat, lon, err = GridToLatLng("FN42")
	require.NoError(t, err)
	assert.InDelta(t, 42.5, lat, 1e-9)
	assert.InDelta(t, -71.0, lon, 1e-9)

	lat, lon, err = GridToLatLng("fn42ma")
	require.NoError(t, err)
	assert.InDelta(t, 42.0+1.0/48, lat, 1e-9)
	assert.InDelta(t, -71.0+1.0/24, lon, 1e-9)

	for _, bad := range []string{"", "FN4", "ZZ42", "FN4x", "FN42ZZ", "FN42ma00"} {
		_, _, err = GridToLatLng(bad)
		assert.ErrorIs(t, err, ErrGrid, bad)
	}
}

func TestLatLngToGrid(t *testing.T) {
	var g, err = LatLngToGrid(42.5, -71.0, 4)
	require.NoError(t, err)
	assert.Equal(t, "FN42", g)

	g, err = LatLngToGrid(42.5, -71.0, 6)
	require.NoError(t, err)
	assert.Equal(t, "FN42mm", g)

	g, err = LatLngToGrid(90, 180, 4)
	require.NoError(t, err)
	assert.Equal(t, "RR99", g)

	_, err = LatLngToGrid(91, 0, 4)
	assert.ErrorIs(t, err, ErrGrid)

	_, err = LatLngToGrid(0, 0, 5)
	assert.ErrorIs(t, err, ErrGrid)
}

func TestGridRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var grid = fmt.Sprintf("%c%c%d%d%c%c",
			rapid.ByteRange('A', 'R').Draw(t, "lon1"),
			rapid.ByteRange('A', 'R').Draw(t, "lat1"),
			rapid.IntRange(0, 9).Draw(t, "lon2"),
			rapid.IntRange(0, 9).Draw(t, "lat2"),
			rapid.ByteRange('a', 'x').Draw(t, "lon3"),
			rapid.ByteRange('a', 'x').Draw(t, "lat3"))

		var lat, lon, err = GridToLatLng(grid)
		require.NoError(t, err)

		var back, backErr = LatLngToGrid(lat, lon, 6)
		require.NoError(t, backErr)
		assert.Equal(t, grid, back)

		back, backErr = LatLngToGrid(lat, lon, 4)
		require.NoError(t, backErr)
		assert.Equal(t, grid[:4], back)
	})
}

func TestGridDistance(t *testing.T) {
	var d, err = GridDistance("FN42", "EM16")
	require.NoError(t, err)
	assert.InDelta(t, 2318, d, 30)

	var back, _ = GridDistance("EM16", "FN42")
	assert.InDelta(t, d, back, 1e-9)

	d, err = GridDistance("fn42", "FN42")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-9)

	_, err = GridDistance("FN42", "XX99")
	assert.ErrorIs(t, err, ErrGrid)
}

func TestGridBearing(t *testing.T) {
	var b, err = GridBearing("FN42", "EM16")
	require.NoError(t, err)
	assert.Greater(t, b, 255.0)
	assert.Less(t, b, 270.0)

	b, err = GridBearing("FN42", "FN52")
	require.NoError(t, err)
	assert.InDelta(t, 90, b, 5)

	b, err = GridBearing("FN42", "FN43")
	require.NoError(t, err)
	assert.InDelta(t, 0, b, 1e-6)
}

func TestGridToUTMAndMGRS(t *testing.T) {
	var utm, err = GridToUTM("FN42")
	require.NoError(t, err)
	assert.Equal(t, 19, utm.Zone)
	assert.Equal(t, 'N', utm.Hemisphere)
	assert.InDelta(t, 336000, utm.Easting, 10000)
	assert.InDelta(t, 4707000, utm.Northing, 20000)
	assert.Contains(t, utm.String(), "19N ")

	var mgrs, mgrsErr = GridToMGRS("FN42", 1)
	require.NoError(t, mgrsErr)
	assert.True(t, strings.HasPrefix(mgrs, "19T"), mgrs)

	_, err = GridToUTM("bogus")
	assert.ErrorIs(t, err, ErrGrid)
}
