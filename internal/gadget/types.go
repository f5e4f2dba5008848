package gadget

import (
	"fmt"
	"strings"
	"time"
)

// MaxNameLength is the longest permitted gadget name, in characters.
const MaxNameLength = 255

// Status is the lifecycle state of a gadget.
type Status string

// Gadget statuses.
const (
	StatusAvailable      Status = "Available"
	StatusDeployed       Status = "Deployed"
	StatusDestroyed      Status = "Destroyed"
	StatusDecommissioned Status = "Decommissioned"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusAvailable,
	StatusDeployed,
	StatusDestroyed,
	StatusDecommissioned,
}

// ParseStatus converts an external string into a Status.
// The match is exact and case-sensitive.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q, possible values are %s", ErrInvalidStatus, s, StatusList())
}

// StatusList renders the enumeration as "[Available, Deployed, ...]".
func StatusList() string {
	names := make([]string, len(AllStatuses))
	for i, st := range AllStatuses {
		names[i] = string(st)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Gadget is a single inventory item.
type Gadget struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Status           Status    `json:"status"`
	DecommissionedAt time.Time `json:"decommissioned_at"`
}

// Listed is a gadget annotated for display with a mission success
// probability such as "73%". The probability is never stored.
type Listed struct {
	Gadget
	MissionSuccessProbability string `json:"missionSuccessProbability,omitempty"`
}

// Update is a partial modification. Nil fields are left unchanged.
type Update struct {
	Name   *string
	Status *Status
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Status == nil
}

// Validate checks the supplied fields.
func (u Update) Validate() error {
	if u.Name != nil {
		n := len([]rune(*u.Name))
		if n == 0 || n > MaxNameLength {
			return fmt.Errorf("%w: must be 1-%d characters", ErrInvalidName, MaxNameLength)
		}
	}
	return nil
}

// SelfDestructTicket is returned when a self-destruct sequence is armed.
type SelfDestructTicket struct {
	GadgetID         int64     `json:"gadgetId"`
	ConfirmationCode string    `json:"confirmationCode"`
	ExpiresAt        time.Time `json:"expiresAt"`
}
