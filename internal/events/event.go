package events

import "time"

// TopicLinkCreated carries one message per newly created short link.
const TopicLinkCreated = "link.created"

// LinkCreated is published when the store assigns a token to a URL it had not seen.
type LinkCreated struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
