package controller

import "time"

// isValidDate reports whether s is a real calendar date written exactly as
// YYYY-MM-DD (zero-padded month and day, leap years honoured).
func isValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
