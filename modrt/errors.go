package modrt

import "fmt"

// NotFoundError reports a module request that resolved to neither a builtin
// nor an on-disk manifest.
type NotFoundError struct {
	Spec string
	From Key
}

func (e *NotFoundError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("module '%s' not found (requested from %s)", e.Spec, e.From)
	}
	return fmt.Sprintf("module '%s' not found", e.Spec)
}
