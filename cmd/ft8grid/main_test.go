package main

import "os"

func Example_main() {
	os.Args = []string{"ft8grid"}

	main()
	// Output:
	// Maidenhead locator conversion
	//
	// Usage:
	// 	ft8grid  grid  [grid2]
	//
	// where,
	// 	grid is a 4 or 6 character locator such as FN42 or FN42ma.
	// 	   With a second locator, distance and bearing are shown too.
	//
	// Example:
	// 	ft8grid FN42 EM16
}

func Example_main_1() { //nolint:testableexamples
	os.Args = []string{"ft8grid", "FN42", "EM16"}

	main()
}
