package regioncache

import "errors"

// ErrUnknownRegion reports a manager operation against a region name
// that was never registered.
var ErrUnknownRegion = errors.New("regioncache: unknown region")
