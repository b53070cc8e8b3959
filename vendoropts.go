package uvcpreview

import (
	"github.com/hashicorp/errwrap"
	"github.com/mitchellh/mapstructure"
)

// UVCTransportOptions tunes the reference transportuvc backend. Embedders
// that write their own Transport are not required to use this type, but may
// reuse DecodeVendorOptions for their own loosely-typed option bags.
type UVCTransportOptions struct {
	VendorID                uint16  `mapstructure:"vendor_id"`
	ProductID                uint16  `mapstructure:"product_id"`
	InterfaceIndex           int     `mapstructure:"interface_index"`
	PreferredBandwidthFactor float32 `mapstructure:"bandwidth_factor"`
}

// DefaultUVCTransportOptions returns the default options: zero vendor,
// product and interface index (first matching device) and a bandwidth
// factor of 1.0, libuvc's default.
func DefaultUVCTransportOptions() UVCTransportOptions {
	return UVCTransportOptions{PreferredBandwidthFactor: 1.0}
}

// DecodeVendorOptions decodes a loosely-typed property bag (as an embedder
// might source from a config file or RPC call) into UVCTransportOptions.
func DecodeVendorOptions(raw map[string]interface{}) (UVCTransportOptions, error) {
	opts := DefaultUVCTransportOptions()
	if raw == nil {
		return opts, nil
	}
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return UVCTransportOptions{}, errwrapf(err, "decode vendor options")
	}
	return opts, nil
}

// errwrapf wraps err with a message prefix using hashicorp/errwrap, the
// convention this module's teardown aggregation uses throughout.
func errwrapf(err error, msg string) error {
	return errwrap.Wrapf(msg+": {{err}}", err)
}
