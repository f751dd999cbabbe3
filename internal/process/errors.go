package process

import "errors"

// ErrInvalidPID rejects pids that would address the caller's own group.
var ErrInvalidPID = errors.New("process: invalid pid")
