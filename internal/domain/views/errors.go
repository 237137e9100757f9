package views

import "errors"

// ErrFilterMiss reports a department filter that matches no record. It is
// informational: the views are still valid and simply empty.
var ErrFilterMiss = errors.New("department not present in dataset")
