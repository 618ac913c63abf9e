package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skip2/go-qrcode"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/types/community"
	"habitHiveAPI/utils"
)

// codeRetryBudget bounds how often CreateCommunity regenerates on an
// invite code collision before giving up.
const codeRetryBudget = 5

// CommunityService owns community creation, the code-based join flow
// and the pending/accepted/rejected membership state machine. The owner
// is authorized by owner_user_id match and holds no membership row.
type CommunityService struct {
	db *pgxpool.Pool
}

func NewCommunityService(db *pgxpool.Pool) *CommunityService {
	return &CommunityService{db: db}
}

func (s *CommunityService) CreateCommunity(ctx context.Context, clerkID string, req *community.CreateCommunityRequest) (*community.Community, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("community name must not be blank")
	}

	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&ownerID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	c := &community.Community{
		ID:          uuid.New(),
		Name:        name,
		IsPrivate:   req.IsPrivate,
		OwnerUserID: ownerID,
	}

	query := `
	INSERT INTO communities (id, name, code, is_private, owner_user_id, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING created_at
	`

	for attempt := 0; attempt < codeRetryBudget; attempt++ {
		code, err := utils.GenerateCommunityCode()
		if err != nil {
			return nil, err
		}

		err = s.db.QueryRow(ctx, query, c.ID, c.Name, code, c.IsPrivate, c.OwnerUserID).Scan(&c.CreatedAt)
		if err == nil {
			c.Code = code
			return c, nil
		}

		if isUniqueViolation(err) {
			log.Printf("CreateCommunity: code %s collided, retrying (%d/%d)", code, attempt+1, codeRetryBudget)
			continue
		}

		return nil, fmt.Errorf("failed to create community: %w", err)
	}

	return nil, apperrors.Conflict("could not allocate a unique community code")
}

func (s *CommunityService) JoinByCode(ctx context.Context, clerkID string, code string) (*community.Membership, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var communityID, ownerID uuid.UUID
	var isPrivate bool
	err = s.db.QueryRow(ctx, `
		SELECT id, owner_user_id, is_private
		FROM communities
		WHERE code = $1`,
		utils.NormalizeCommunityCode(code)).Scan(&communityID, &ownerID, &isPrivate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no community with that code")
		}
		return nil, fmt.Errorf("failed to look up community: %w", err)
	}

	if ownerID == userID {
		return nil, apperrors.Conflict("you already own this community")
	}

	status := community.StatusAccepted
	if isPrivate {
		status = community.StatusPending
	}

	m := &community.Membership{
		ID:          uuid.New(),
		CommunityID: communityID,
		UserID:      userID,
		Status:      status,
	}

	// the (community_id, user_id) unique constraint is the race guard:
	// two concurrent joins surface one insert and one 23505
	err = s.db.QueryRow(ctx, `
		INSERT INTO community_memberships (id, community_id, user_id, status, joined_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING joined_at`,
		m.ID, m.CommunityID, m.UserID, m.Status).Scan(&m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("membership already exists for this community")
		}
		return nil, fmt.Errorf("failed to join community: %w", err)
	}

	return m, nil
}

func (s *CommunityService) SetMembershipStatus(ctx context.Context, clerkID string, communityID, memberUserID uuid.UUID, newStatus community.MembershipStatus) (*community.Membership, error) {
	if newStatus != community.StatusAccepted && newStatus != community.StatusRejected {
		return nil, apperrors.Validation("status must be %q or %q", community.StatusAccepted, community.StatusRejected)
	}

	var actingUserID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&actingUserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var ownerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT owner_user_id FROM communities WHERE id = $1`, communityID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("community not found")
		}
		return nil, fmt.Errorf("failed to look up community: %w", err)
	}

	if ownerID != actingUserID {
		return nil, apperrors.Authorization("only the community owner may review join requests")
	}

	m := &community.Membership{CommunityID: communityID, UserID: memberUserID}
	err = s.db.QueryRow(ctx, `
		UPDATE community_memberships
		SET status = $3
		WHERE community_id = $1 AND user_id = $2 AND status = $4
		RETURNING id, status, joined_at`,
		communityID, memberUserID, newStatus, community.StatusPending).Scan(&m.ID, &m.Status, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no pending membership for that user")
		}
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	return m, nil
}

// GetVisibleCommunities returns the union of communities the user owns
// and communities where they hold an accepted membership.
func (s *CommunityService) GetVisibleCommunities(ctx context.Context, clerkID string) ([]*community.Community, error) {
	query := `
	SELECT c.id, c.name, c.code, c.is_private, c.owner_user_id, c.created_at
	FROM communities c
	JOIN users u ON u.clerk_id = $1
	WHERE c.owner_user_id = u.id
		OR EXISTS (
			SELECT 1 FROM community_memberships m
			WHERE m.community_id = c.id AND m.user_id = u.id AND m.status = $2
		)
	ORDER BY c.created_at
	`

	rows, err := s.db.Query(ctx, query, clerkID, community.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communities: %w", err)
	}
	defer rows.Close()

	communities := make([]*community.Community, 0)
	for rows.Next() {
		c := &community.Community{}
		err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.IsPrivate, &c.OwnerUserID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return communities, nil
}

// GetCommunityMembers lists members. The owner also sees pending and
// rejected requests; accepted members see accepted members only.
func (s *CommunityService) GetCommunityMembers(ctx context.Context, clerkID string, communityID uuid.UUID) ([]*community.Member, error) {
	userID, isOwner, err := s.participantRole(ctx, clerkID, communityID)
	if err != nil {
		return nil, err
	}

	if !isOwner {
		var accepted bool
		err = s.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM community_memberships
				WHERE community_id = $1 AND user_id = $2 AND status = $3
			)`, communityID, userID, community.StatusAccepted).Scan(&accepted)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !accepted {
			return nil, apperrors.Authorization("not a member of this community")
		}
	}

	query := `
	SELECT m.user_id, u.username, COALESCE(u.image_url, ''), m.status, m.joined_at
	FROM community_memberships m
	JOIN users u ON m.user_id = u.id
	WHERE m.community_id = $1
	`
	args := []any{communityID}
	if !isOwner {
		query += ` AND m.status = $2`
		args = append(args, community.StatusAccepted)
	}
	query += ` ORDER BY m.joined_at`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	members := make([]*community.Member, 0)
	for rows.Next() {
		m := &community.Member{}
		if err := rows.Scan(&m.UserID, &m.Username, &m.ImageURL, &m.Status, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return members, nil
}

// GetInviteQr renders the community's join code as a QR PNG for
// in-person sharing. Visible to the owner and accepted members.
func (s *CommunityService) GetInviteQr(ctx context.Context, clerkID string, communityID uuid.UUID) (*community.InviteQr, error) {
	userID, isOwner, err := s.participantRole(ctx, clerkID, communityID)
	if err != nil {
		return nil, err
	}

	if !isOwner {
		var accepted bool
		err = s.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM community_memberships
				WHERE community_id = $1 AND user_id = $2 AND status = $3
			)`, communityID, userID, community.StatusAccepted).Scan(&accepted)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !accepted {
			return nil, apperrors.Authorization("not a member of this community")
		}
	}

	var code string
	err = s.db.QueryRow(ctx, `SELECT code FROM communities WHERE id = $1`, communityID).Scan(&code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community code: %w", err)
	}

	shareLink := fmt.Sprintf("habithive://communities/join?code=%s", code)
	pngBytes, err := qrcode.Encode(shareLink, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &community.InviteQr{
		Code:         code,
		ShareLink:    shareLink,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
		GeneratedAt:  time.Now(),
	}, nil
}

// participantRole resolves the caller and reports whether they own the
// community. Unknown community ids surface NotFoundError.
func (s *CommunityService) participantRole(ctx context.Context, clerkID string, communityID uuid.UUID) (uuid.UUID, bool, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("user not found: %w", err)
	}

	var ownerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT owner_user_id FROM communities WHERE id = $1`, communityID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, apperrors.NotFound("community not found")
		}
		return uuid.Nil, false, fmt.Errorf("failed to look up community: %w", err)
	}

	return userID, ownerID == userID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
