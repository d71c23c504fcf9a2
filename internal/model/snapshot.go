package model

// Snapshot is the complete state of all four collections at one point in
// time. It is the unit of persistence: the store always loads and saves the
// whole document, never a partial update.
type Snapshot struct {
	Videos        []*Video        `json:"videos"`
	Users         []*User         `json:"users"`
	Comments      []*Comment      `json:"comments"`
	Subscriptions []*Subscription `json:"subscriptions"`
}

// NewSnapshot returns an empty snapshot with all collections allocated, so
// an untouched document marshals as empty arrays rather than nulls.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Videos:        []*Video{},
		Users:         []*User{},
		Comments:      []*Comment{},
		Subscriptions: []*Subscription{},
	}
}

// FindVideo returns the video with the given id, or nil.
func (s *Snapshot) FindVideo(id string) *Video {
	for _, v := range s.Videos {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// FindUser returns the user with the given id, or nil.
func (s *Snapshot) FindUser(id string) *User {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FindUserByNickname returns the user with the given nickname (exact,
// case-sensitive match), or nil.
func (s *Snapshot) FindUserByNickname(nickname string) *User {
	for _, u := range s.Users {
		if u.Nickname == nickname {
			return u
		}
	}
	return nil
}

// FindComment returns the comment with the given id, or nil.
func (s *Snapshot) FindComment(id string) *Comment {
	for _, c := range s.Comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindSubscription returns the index of the subscription for the given
// (subscriber, channel) pair, or -1.
func (s *Snapshot) FindSubscription(subscriberID, channelID string) int {
	for i, sub := range s.Subscriptions {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return i
		}
	}
	return -1
}
