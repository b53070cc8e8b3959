package uvcpreview

import "errors"

// Error taxonomy. Of the first group, only ErrNegotiation and ErrTransport
// are surfaced to a lifecycle caller; the others are handled locally by
// dropping the offending frame. The second group reports misuse of the
// Session lifecycle API.
var (
	ErrNegotiation         = errors.New("uvcpreview: format negotiation failed")
	ErrTransport           = errors.New("uvcpreview: transport error")
	ErrInvalidFrame        = errors.New("uvcpreview: invalid frame")
	ErrAllocationFailure   = errors.New("uvcpreview: frame pool allocation failure")
	ErrConversionFailure   = errors.New("uvcpreview: pixel conversion failure")
	ErrSurfaceLockFailure  = errors.New("uvcpreview: surface lock failure")
	ErrCallbackMarshalling = errors.New("uvcpreview: host callback error")

	ErrNoPreviewSurface = errors.New("uvcpreview: start requires a bound preview surface")
	ErrNotConfigured    = errors.New("uvcpreview: session is not configured")
	ErrWrongState       = errors.New("uvcpreview: operation invalid in current session state")
	ErrIncompatibleSurface = errors.New("uvcpreview: surface format incompatible with current configuration")
)
