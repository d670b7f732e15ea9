package ports

import "errors"

// ErrDuplicateKey is returned by repositories when an insert violates a
// uniqueness constraint (e.g. a replayed deposit correlation key).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrUnknownPair is returned by RateGateway implementations when neither
// the live source nor the fallback table has a rate for the pair. Callers
// must fail closed on it.
var ErrUnknownPair = errors.New("no rate available for pair")
