package darknet

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrImageDecode is returned when an image file is malformed or in an
	// unsupported format
	ErrImageDecode = errors.New("image decode error")
	// ErrIO is returned on filesystem access failures
	ErrIO = errors.New("io error")
	// ErrEncoding is returned when a path can not be passed to darknet as a
	// C string
	ErrEncoding = errors.New("path encoding error")
	// ErrInternal is returned when darknet reports a failure, eg: an
	// unparsable network cfg file
	ErrInternal = errors.New("darknet internal error")
	// ErrConversion is returned on channel count or shape mismatches while
	// converting between pixel buffers and tensors
	ErrConversion = errors.New("conversion error")
	// ErrLabelCount is returned when the labels do not match the number of
	// classes of the network output layer
	ErrLabelCount = errors.New("label count mismatch")
)

// ConversionError describes a count mismatch during a conversion
type ConversionError struct {
	// Op names the conversion, eg: "to tensor"
	Op string
	// What is being counted, eg: "channels"
	What string
	Want int
	Got  int
}

// Error returns the error message
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %d %s, got %d", ErrConversion, e.Op,
		e.Want, e.What, e.Got)
}

// Is makes errors.Is match ErrConversion
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// checkPath returns an ErrEncoding if path contains a NUL byte, which C
// strings can not represent
func checkPath(path string) error {

	for i := 0; i < len(path); i++ {
		if path[i] == 0 {
			return errors.Wrapf(ErrEncoding, "path %q contains a NUL byte", path)
		}
	}

	return nil
}
