package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "gadgetd"

// Topics builds gadgetd topic names under a prefix.
//
//	topics := mqtt.NewTopics("gadgetd")
//	topics.GadgetEvent("gadget.destroyed", 7)
//	// Returns: "gadgetd/events/gadget.destroyed/7"
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Surrounding slashes are trimmed
// and an empty prefix becomes DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	return t.prefix
}

// Status returns the retained service status topic.
func (t Topics) Status() string {
	return t.prefix + "/status"
}

// GadgetEvent returns the topic for one lifecycle event of one gadget.
func (t Topics) GadgetEvent(eventType string, gadgetID int64) string {
	return fmt.Sprintf("%s/events/%s/%d", t.prefix, eventType, gadgetID)
}

// AllGadgetEvents returns the wildcard matching every lifecycle event.
func (t Topics) AllGadgetEvents() string {
	return t.prefix + "/events/#"
}
