/* Maidenhead locator to Latitude / Longitude, UTM and MGRS conversion */
package main

import (
	"fmt"
	"os"

	ft8modem "github.com/doismellburning/ft8modem/src"
)

func main() {
	if len(os.Args) != 2 && len(os.Args) != 3 {
		usage()
		return
	}

	var grid = os.Args[1]

	var lat, lon, err = ft8modem.GridToLatLng(grid)
	if err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: latitude = %.4f, longitude = %.4f\n", grid, lat, lon)

	// UTM
	var utm, utmErr = ft8modem.GridToUTM(grid)
	if utmErr == nil {
		fmt.Printf("UTM zone = %d, hemisphere = %c, easting = %.0f, northing = %.0f\n", utm.Zone, utm.Hemisphere, utm.Easting, utm.Northing)
	} else {
		fmt.Printf("Conversion to UTM failed:\n%s\n\n", utmErr)

		// Others could still succeed, keep going.
	}

	// Practice run with MGRS to see if it will succeed

	var _, mgrsErr = ft8modem.GridToMGRS(grid, 5)
	if mgrsErr == nil {
		fmt.Printf("MGRS =")

		for precision := 1; precision <= 5; precision++ {
			var mgrs, _ = ft8modem.GridToMGRS(grid, precision)
			fmt.Printf("  %s", mgrs)
		}

		fmt.Printf("\n")
	} else {
		fmt.Printf("Conversion to MGRS failed:\n%s\n", mgrsErr)
	}

	if len(os.Args) == 3 {
		var other = os.Args[2]

		var km, distErr = ft8modem.GridDistance(grid, other)
		if distErr != nil {
			fmt.Printf("%s\n", distErr)
			os.Exit(1)
		}
		var bearing, _ = ft8modem.GridBearing(grid, other)

		fmt.Printf("%s to %s: distance = %.0f km, bearing = %.0f degrees\n", grid, other, km, bearing)
	}
}

func usage() {
	fmt.Printf("Maidenhead locator conversion\n")
	fmt.Printf("\n")
	fmt.Printf("Usage:\n")
	fmt.Printf("\tft8grid  grid  [grid2]\n")
	fmt.Printf("\n")
	fmt.Printf("where,\n")
	fmt.Printf("\tgrid is a 4 or 6 character locator such as FN42 or FN42ma.\n")
	fmt.Printf("\t   With a second locator, distance and bearing are shown too.\n")
	fmt.Printf("\n")
	fmt.Printf("Example:\n")
	fmt.Printf("\tft8grid FN42 EM16\n")
}
