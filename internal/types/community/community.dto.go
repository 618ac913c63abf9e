package community

import "time"

type CreateCommunityRequest struct {
	Name      string `json:"name" validate:"required"`
	IsPrivate bool   `json:"isPrivate"`
}

type JoinCommunityRequest struct {
	Code string `json:"code" validate:"required"`
}

type ReviewMembershipRequest struct {
	Status MembershipStatus `json:"status" validate:"required"`
}

// InviteQr is the shareable join payload for a community.
type InviteQr struct {
	Code         string    `json:"code"`
	ShareLink    string    `json:"shareLink"`
	QrCodeBase64 string    `json:"qrCodeBase64"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
