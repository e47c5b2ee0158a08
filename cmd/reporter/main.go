// Command reporter runs the lost-sales reports from the console: it asks for
// the date range and location, filters every configured report and writes
// the charts, series files and workbook into the output directory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
