package cut

import "errors"

var (
	// ErrAttributeNotFound reports a name never attached to the entity.
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrNotLoadable reports an attribute that exists but is not an
	// array manifest, so it has nothing to load.
	ErrNotLoadable = errors.New("attribute is not loadable")
	// ErrInvalidRange reports a truncation window that escapes the
	// cut's own extent.
	ErrInvalidRange = errors.New("window outside cut bounds")
	// ErrAttributeNameConflict reports an attribute name that would
	// shadow a built-in serialized field.
	ErrAttributeNameConflict = errors.New("attribute name conflicts with built-in field")
)
