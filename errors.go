package modmock

import "errors"

var (
	// ErrInvalidTarget reports a substitute target that is neither a module
	// name nor nil.
	ErrInvalidTarget = errors.New("modmock: invalid substitute target")

	// ErrBuiltinUnhook reports an attempt to register a builtin module as an
	// allowable with unhook set. Builtin cache entries survive clean-cache
	// isolation, so they are never evicted on deregistration.
	ErrBuiltinUnhook = errors.New("modmock: builtin modules cannot be registered with unhook")

	// ErrNotHooked reports a load that reached the interception hook after
	// interception was disabled.
	ErrNotHooked = errors.New("modmock: module interception is not enabled")
)
