// Package transportuvc is a reference uvcpreview.Transport implementation
// that binds libuvc.so through purego (CGO_ENABLED=0), the same dlopen +
// RegisterLibFunc approach this module's ancestor used for its V4L2/ALSA
// device wrappers.
//
// Set UVCPREVIEW_LIBUVC_PATH to the directory containing libuvc.so if it is
// not on the default search path.
package transportuvc
