package ft8modem

// Grid squares in UTM and MGRS, via https://github.com/tzneal/coordconv

import (
	"fmt"

	"github.com/tzneal/coordconv"
)

func HemisphereToRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	case coordconv.HemisphereInvalid:
		return '!'
	default:
		return '?'
	}
}

type UTMPosition struct {
	Zone       int
	Hemisphere rune
	Easting    float64
	Northing   float64
}

func (u UTMPosition) String() string {
	return fmt.Sprintf("%d%c %.0fmE %.0fmN", u.Zone, u.Hemisphere, u.Easting, u.Northing)
}

// GridToUTM converts the centre of a grid square to UTM.
func GridToUTM(grid string) (UTMPosition, error) {
	var ll, err = gridLatLng(grid)
	if err != nil {
		return UTMPosition{}, err
	}

	var utm, utmErr = coordconv.DefaultUTMConverter.ConvertFromGeodetic(ll, 0)
	if utmErr != nil {
		return UTMPosition{}, fmt.Errorf("grid %s to UTM: %w", grid, utmErr)
	}

	return UTMPosition{
		Zone:       int(utm.Zone),
		Hemisphere: HemisphereToRune(utm.Hemisphere),
		Easting:    float64(utm.Easting),
		Northing:   float64(utm.Northing),
	}, nil
}

// GridToMGRS converts the centre of a grid square to MGRS with 1 to 5
// digits of precision.
func GridToMGRS(grid string, precision int) (string, error) {
	var ll, err = gridLatLng(grid)
	if err != nil {
		return "", err
	}

	var mgrs, mgrsErr = coordconv.DefaultMGRSConverter.ConvertFromGeodetic(ll, precision)
	if mgrsErr != nil {
		return "", fmt.Errorf("grid %s to MGRS: %w", grid, mgrsErr)
	}

	return fmt.Sprint(mgrs), nil
}
