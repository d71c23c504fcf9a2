package model

// Subscription links a subscriber to a channel (both user ids). At most one
// subscription exists per (subscriber, channel) pair.
type Subscription struct {
	ID           string `json:"id"`
	SubscriberID string `json:"subscriberId"`
	ChannelID    string `json:"channelId"`
}
