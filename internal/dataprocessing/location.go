package dataprocessing

import (
	"fmt"

	apperrors "opsreports/internal/errors"
)

// AllLocations is the label used when no single location is selected.
const AllLocations = "Todas"

// LocationMenu returns the option labels in menu order: 1 is every
// location, 2..N+1 the configured locations.
func LocationMenu(locations []string) []string {
	return append([]string{AllLocations}, locations...)
}

// SelectLocation applies a 1-based location menu option to t. Option 1
// returns t unchanged; option k in 2..len(locations)+1 keeps only
// locations[k-2]. The selected label is returned for chart titles.
func SelectLocation(t *Table, column string, option int, locations []string) (*Table, string, error) {
	if option == 1 {
		return t, AllLocations, nil
	}

	if option < 1 || option > len(locations)+1 {
		return nil, "", apperrors.NewAppValidationError(
			fmt.Sprintf("invalid option %d: choose 1-%d", option, len(locations)+1), ErrInvalidOption).
			WithContext("option", option)
	}

	location := locations[option-2]
	out, err := RestrictLocations(t, column, []string{location})
	if err != nil {
		return nil, "", err
	}
	return out, location, nil
}
