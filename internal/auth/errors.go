package auth

import "errors"

var (
	// ErrAuthenticationRejected means the endpoint answered but did not
	// grant a usable identity.
	ErrAuthenticationRejected = errors.New("auth: authentication rejected")
	// ErrTransportUnavailable means the endpoint could not be reached or
	// answered with something unreadable.
	ErrTransportUnavailable = errors.New("auth: authentication endpoint unavailable")
	// ErrStorageUnavailable means the durable session store cannot be used.
	ErrStorageUnavailable = errors.New("auth: session storage unavailable")
)
