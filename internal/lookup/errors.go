package lookup

import "errors"

var ErrNameNotFound = errors.New("name not found")
