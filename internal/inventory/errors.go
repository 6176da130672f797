package inventory

import (
	"errors"
	"fmt"
)

// ErrStructural matches every StructuralError via errors.Is
var ErrStructural = errors.New("structural error")

// StructuralError reports a grid whose layout cannot be understood.
// It is fatal: the pipeline returns no partial output alongside it.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return e.Reason
}

// Is allows errors.Is(err, ErrStructural)
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func newStructuralError(format string, args ...any) *StructuralError {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}
