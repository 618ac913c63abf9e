package community

import (
	"time"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	StatusPending  MembershipStatus = "pending"
	StatusAccepted MembershipStatus = "accepted"
	StatusRejected MembershipStatus = "rejected"
)

type Community struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	IsPrivate   bool      `json:"is_private" db:"is_private"`
	OwnerUserID uuid.UUID `json:"owner_user_id" db:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Membership struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	CommunityID uuid.UUID        `json:"community_id" db:"community_id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	Status      MembershipStatus `json:"status" db:"status"`
	JoinedAt    time.Time        `json:"joined_at" db:"joined_at"`
}

// Member is a membership row joined with its user profile, for the
// community member list.
type Member struct {
	UserID   uuid.UUID        `json:"user_id"`
	Username string           `json:"username"`
	ImageURL string           `json:"image_url,omitempty"`
	Status   MembershipStatus `json:"status"`
	JoinedAt time.Time        `json:"joined_at"`
}
