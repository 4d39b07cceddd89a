package authhttp

import "regexp"

// Shape checks applied before any external call. Inputs failing these never
// reach the directory or the dispatcher.
var (
	reE164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	reCode = regexp.MustCompile(`^[0-9]{6}$`)
)
