package session

import "errors"

// ErrCorruptSession is returned when the session file exists but cannot be decoded.
var ErrCorruptSession = errors.New("corrupt session file")
