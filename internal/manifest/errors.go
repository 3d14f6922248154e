package manifest

import "errors"

// ErrShapeMismatch reports that a loaded array's shape disagrees with
// the shape the manifest declares.
var ErrShapeMismatch = errors.New("array shape disagrees with manifest")
