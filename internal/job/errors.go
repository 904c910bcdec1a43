package job

import "errors"

var ErrNotFound = errors.New("job not found")
