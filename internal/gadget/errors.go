package gadget

import "errors"

// Domain errors for the gadget package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, gadget.ErrGadgetNotFound) {
//	    // handle not found case
//	}
var (
	// ErrGadgetNotFound is returned when a gadget ID does not exist.
	ErrGadgetNotFound = errors.New("gadget: not found")

	// ErrNoGadgets is returned by an unfiltered List over an empty inventory.
	ErrNoGadgets = errors.New("gadget: no gadgets found")

	// ErrInvalidStatus is returned when a status string is not in the enumeration.
	ErrInvalidStatus = errors.New("gadget: invalid status")

	// ErrInvalidName is returned when a name is empty or longer than MaxNameLength.
	ErrInvalidName = errors.New("gadget: invalid name")

	// ErrInvalidConfirmation is returned when a self-destruct code is wrong,
	// already used, or expired.
	ErrInvalidConfirmation = errors.New("gadget: invalid or expired confirmation code")
)
