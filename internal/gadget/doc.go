// Package gadget owns the gadget inventory and its lifecycle.
//
// A gadget moves Available → Deployed → Destroyed, with Decommissioned as a
// retirement state reachable from anywhere. The Engine assigns a random
// codename and status on creation, annotates unfiltered listings with a
// per-read mission success probability, and runs the two-step self-destruct
// ritual: SelfDestruct issues a short-lived single-use code and
// ConfirmSelfDestruct consumes it to mark the gadget Destroyed.
//
// Every successful mutation is reported to a Notifier. Notification failures
// are logged and never fail the operation.
package gadget
