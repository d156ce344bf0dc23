package snapshotstore

import "errors"

var (
	ErrNotFound        = errors.New("snapshot not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrEncode          = errors.New("failed to encode snapshot")
	ErrDecode          = errors.New("failed to decode snapshot")
	ErrStorage         = errors.New("snapshot storage error")
)

// IsNotFoundError reports whether err means the snapshot does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
