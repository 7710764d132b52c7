package usage

import "errors"

// ErrLimitReached indicates the analyst exceeded their assessment quota.
var ErrLimitReached = errors.New("limit reached")
