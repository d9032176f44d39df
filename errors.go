package typeschema

import (
	"errors"
	"fmt"
)

// ErrNullableEncoding indicates a Config selecting both or neither of the
// two mutually exclusive nullability encodings.
var ErrNullableEncoding = errors.New("typeschema: exactly one of UseUnionTypes and UseNullableField must be set")

// ErrDiscriminatorConfig indicates IncludeOpenAPIDiscriminator without the
// per-subtype discriminator it extends.
var ErrDiscriminatorConfig = errors.New("typeschema: IncludeOpenAPIDiscriminator requires IncludeDiscriminator")

// DanglingRefError reports a named reference with no node anywhere in the
// completed graph: an introspector contract violation. The transformer fails
// fast with this error instead of emitting a broken $ref.
type DanglingRefError struct {
	ID TypeID
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("typeschema: dangling reference %q: no node registered in graph", string(e.ID))
}
