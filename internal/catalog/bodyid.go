package catalog

import (
	"errors"
	"fmt"
)

// BodyIDShift is the bit offset of the body id inside a body's id64. The low
// 55 bits carry the system address.
const BodyIDShift = 55

const (
	systemAddressMask = uint64(1)<<BodyIDShift - 1
	// MaxBodyID is the largest body id whose id64 still fits a signed
	// BIGINT column without turning negative.
	MaxBodyID = 1<<(63-BodyIDShift) - 1
)

var ErrBodyIDOverflow = errors.New("body id does not fit in a signed 64-bit identifier")

// EncodeBodyID packs a system address and a body id into one identifier:
// systemID64 + bodyID<<55.
func EncodeBodyID(systemID64 int64, bodyID int) (uint64, error) {
	if systemID64 < 0 || uint64(systemID64) > systemAddressMask {
		return 0, fmt.Errorf("%w: system address %d", ErrBodyIDOverflow, systemID64)
	}
	if bodyID < 0 || bodyID > MaxBodyID {
		return 0, fmt.Errorf("%w: body id %d", ErrBodyIDOverflow, bodyID)
	}
	return uint64(systemID64) + uint64(bodyID)<<BodyIDShift, nil
}

// DecodeBodyID is the inverse of EncodeBodyID.
func DecodeBodyID(id64 uint64) (systemID64 int64, bodyID int) {
	return int64(id64 & systemAddressMask), int(id64 >> BodyIDShift)
}
