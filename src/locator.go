package ft8modem

/*------------------------------------------------------------------
 *
 * Purpose:   	Maidenhead locators, distance and bearing.
 *
 * Description: Decodes carry 4 character grids.  The host uses these to
 *		show how far away a station calling CQ is.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s2"
)

var ErrGrid = errors.New("invalid Maidenhead locator")

// Mean earth radius, km.
const earthRadiusKM = 6371.0

type gridPair struct {
	position string
	minCh    byte
	maxCh    byte
	value    int // size of one step in gridUnits
}

// One unit is half of the smallest square so the centre is a whole number.
const gridUnits = 18 * 10 * 24 * 2

var gridPairs = []gridPair{
	{"first", 'A', 'R', 10 * 24 * 2},
	{"second", '0', '9', 24 * 2},
	{"third", 'A', 'X', 2},
}

/*------------------------------------------------------------------
 *
 * Function:	GridToLatLng
 *
 * Purpose:	Convert a 4 or 6 character locator to the latitude and
 *		longitude of the centre of its square.
 *
 * Inputs:	grid	- e.g. "FN42" or "fn42ma".  Case is ignored.
 *
 *------------------------------------------------------------------*/

func GridToLatLng(grid string) (float64, float64, error) {
	var np = len(grid) / 2

	if len(grid)%2 != 0 || np < 2 || np > len(gridPairs) {
		return 0, 0, fmt.Errorf("%w: %q must be 4 or 6 characters", ErrGrid, grid)
	}

	var mh = strings.ToUpper(grid)

	var ilat, ilon int
	for n := 0; n < np; n++ {
		var p = gridPairs[n]
		if mh[2*n] < p.minCh || mh[2*n] > p.maxCh || mh[2*n+1] < p.minCh || mh[2*n+1] > p.maxCh {
			return 0, 0, fmt.Errorf("%w: %s pair of %q must be %c thru %c", ErrGrid, p.position, grid, p.minCh, p.maxCh)
		}

		ilon += int(mh[2*n]-p.minCh) * p.value
		ilat += int(mh[2*n+1]-p.minCh) * p.value

		if n == np-1 {
			ilon += p.value / 2
			ilat += p.value / 2
		}
	}

	var lat = float64(ilat)/gridUnits*180 - 90
	var lon = float64(ilon)/gridUnits*360 - 180

	return lat, lon, nil
}

// LatLngToGrid returns the 4 or 6 character locator containing lat, lon.
func LatLngToGrid(lat, lon float64, chars int) (string, error) {
	if chars != 4 && chars != 6 {
		return "", fmt.Errorf("%w: length %d", ErrGrid, chars)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("%w: %.4f, %.4f out of range", ErrGrid, lat, lon)
	}

	// Work in the same units as GridToLatLng, clamped inside the last square.
	var ilat = min(int(math.Floor((lat+90)/180*gridUnits)), gridUnits-1)
	var ilon = min(int(math.Floor((lon+180)/360*gridUnits)), gridUnits-1)

	var out = make([]byte, 0, chars)
	for n := 0; n < chars/2; n++ {
		var p = gridPairs[n]
		out = append(out, p.minCh+byte(ilon/p.value), p.minCh+byte(ilat/p.value))
		ilon %= p.value
		ilat %= p.value
	}

	// Subsquares are conventionally lower case.
	if chars == 6 {
		out[4] += 'a' - 'A'
		out[5] += 'a' - 'A'
	}

	return string(out), nil
}

func gridLatLng(grid string) (s2.LatLng, error) {
	var lat, lon, err = GridToLatLng(grid)
	if err != nil {
		return s2.LatLng{}, err
	}
	return s2.LatLngFromDegrees(lat, lon), nil
}

// GridDistance is the great circle distance in km between square centres.
func GridDistance(a, b string) (float64, error) {
	var pa, errA = gridLatLng(a)
	if errA != nil {
		return 0, errA
	}
	var pb, errB = gridLatLng(b)
	if errB != nil {
		return 0, errB
	}

	return pa.Distance(pb).Radians() * earthRadiusKM, nil
}

// GridBearing is the initial bearing from a to b in degrees, 0 to 360.
func GridBearing(a, b string) (float64, error) {
	var pa, errA = gridLatLng(a)
	if errA != nil {
		return 0, errA
	}
	var pb, errB = gridLatLng(b)
	if errB != nil {
		return 0, errB
	}

	var lat1, lat2 = pa.Lat.Radians(), pb.Lat.Radians()
	var dlon = (pb.Lng - pa.Lng).Radians()

	var y = math.Sin(dlon) * math.Cos(lat2)
	var x = math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	var deg = math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360), nil
}
