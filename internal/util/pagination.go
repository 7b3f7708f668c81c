package util

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Clamp normalises skip/limit query values: negative skip becomes 0, a
// missing or non-positive limit falls back to DefaultLimit and large limits
// are capped at MaxLimit.
func Clamp(skip, limit int) (offset, size int) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return skip, limit
}
