package forecast

import "errors"

// ErrInsufficientData signals that a product does not have enough history
// for the seasonal model. Callers check it with errors.Is and fall back to
// the weighted-average method instead of treating it as a failure.
var ErrInsufficientData = errors.New("insufficient sales history")
