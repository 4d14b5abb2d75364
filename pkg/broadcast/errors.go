package broadcast

import "errors"

var (
	// ErrNilRegistry is returned when a dispatcher is built without a registry.
	ErrNilRegistry = errors.New("broadcast.nil_registry")

	// ErrNilDeliverFunc is returned when a target registers without a
	// delivery function.
	ErrNilDeliverFunc = errors.New("broadcast.nil_deliver_func")

	// ErrInvalidPageURL is returned when a target registers with a URL that
	// has no usable host.
	ErrInvalidPageURL = errors.New("broadcast.invalid_page_url")

	// ErrInvalidSitePattern is returned when a configured site pattern does
	// not compile.
	ErrInvalidSitePattern = errors.New("broadcast.invalid_site_pattern")
)
