package record

import (
	"errors"
	"fmt"

	"github.com/mathbib/mbib/internal/keyid"
)

// ErrRemoteAccess indicates a connectivity failure during resolution. The
// in-progress closure computation is abandoned; nothing partial is cached.
var ErrRemoteAccess = errors.New("remote access error")

// NullRecordError indicates that resolution completed without connectivity
// problems but produced zero records for the starting identifier.
type NullRecordError struct {
	Key keyid.KeyID
}

func (e *NullRecordError) Error() string {
	return fmt.Sprintf("null record for %s", e.Key)
}

// MissingFieldError indicates a record lacking a field required for
// bibliography generation, such as "bibtype".
type MissingFieldError struct {
	Key   keyid.KeyID
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %s missing required field %q", e.Key, e.Field)
}

// IsNullRecord reports whether err indicates an empty resolution.
func IsNullRecord(err error) bool {
	var nre *NullRecordError
	return errors.As(err, &nre)
}
