package errors

import (
	"fmt"
	"strings"
)

// unpacker is implemented by errors that group more than one failure.
type unpacker interface {
	Unpack() []error
}

// multiErr collects independent failures, for example from validating every
// field of a message at once.
type multiErr struct {
	errors []error
}

// Append combines given errors into a single error. Nil values are ignored.
// If no error is left, nil is returned. A single remaining error is returned
// as it is.
func Append(errs ...error) error {
	var collected []error
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if u, ok := err.(unpacker); ok {
			collected = append(collected, u.Unpack()...)
			continue
		}
		collected = append(collected, err)
	}
	switch len(collected) {
	case 0:
		return nil
	case 1:
		return collected[0]
	default:
		return &multiErr{errors: collected}
	}
}

// AppendField is a helper that labels an error with the name of the field it
// was produced for before appending it.
func AppendField(err error, field string, fieldErr error) error {
	if errIsNil(fieldErr) {
		return err
	}
	return Append(err, Wrap(fieldErr, field))
}

func (m *multiErr) Error() string {
	points := make([]string, len(m.errors))
	for i, err := range m.errors {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m.errors), strings.Join(points, "\n\t"))
}

// Unpack returns all grouped errors.
func (m *multiErr) Unpack() []error {
	return m.errors
}

// ABCICode returns the code of the first error, consistent with a fail fast
// approach.
func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errors[0])
}

var _ unpacker = (*multiErr)(nil)
var _ coder = (*multiErr)(nil)
