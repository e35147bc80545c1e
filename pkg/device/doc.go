// Package device models a camera as seen by the core.
//
// A Descriptor is the capability snapshot reported at enumeration. Its
// metadata store doubles as the local mirror of the device's current
// control values: every successful locked transaction merges the values it
// sent into it, and all read accessors read from it.
//
// A Handle is the control channel to an opened device. Control changes are
// batched in a locked transaction:
//
//	if err := h.Lock(ctx); err != nil {
//	    return err
//	}
//	h.SetZoomRatio(2.0)
//	h.SetFocusMode(device.FocusModeContinuousAuto)
//	err := h.Unlock(ctx) // one UpdateSetting round trip
//
// Setters outside a transaction are rejected without touching the device.
// Unlock always closes the transaction, even when the remote update fails.
package device
