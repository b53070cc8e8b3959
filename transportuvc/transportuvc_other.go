//go:build !linux

package transportuvc

import (
	"fmt"

	"github.com/thesyncim/uvcpreview"
)

// Available always reports false on non-Linux platforms; libuvc.so binding
// is only implemented for linux in this reference backend.
func Available() bool { return false }

// New always fails on non-Linux platforms.
func New(rawOpts map[string]interface{}) (uvcpreview.Transport, error) {
	return nil, fmt.Errorf("transportuvc: unsupported platform")
}
