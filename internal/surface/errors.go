package surface

import "errors"

// ErrInsufficientData is returned when the input cloud is empty. It is the
// only failure the smoothing stage can report; every other degenerate
// condition is handled by dropping the affected point or polygon and
// counting it in the run statistics.
var ErrInsufficientData = errors.New("surface: input cloud is empty")
