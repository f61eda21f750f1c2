package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidReading marks a device line that does not start with a finite
// decimal temperature.
var ErrInvalidReading = errors.New("invalid reading")

// leadingNumber matches the longest decimal prefix of a reading, so that
// "23.5C" and "21.0,OK" read as 23.5 and 21.0.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

// ParseTemperature converts one device line to °C. Leading whitespace is
// skipped and anything after the number is ignored.
func ParseTemperature(message string) (float64, error) {
	s := strings.TrimLeft(message, " \t\r\n\v\f")
	num := leadingNumber.FindString(s)
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReading, message)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidReading, message, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidReading, message)
	}
	return v, nil
}
