package integration

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/types/community"
	"habitHiveAPI/services"
	"habitHiveAPI/tests/helpers"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCommunityJoinAndReview(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	communityService := services.NewCommunityService(pool)

	ctx := context.Background()
	stamp := time.Now().Format("20060102150405")
	ownerClerkID := "user_test_owner_" + stamp
	joinerClerkID := "user_test_joiner_" + stamp
	strangerClerkID := "user_test_stranger_" + stamp
	helpers.CreateTestUser(t, pool, ownerClerkID)
	joinerUserID := helpers.CreateTestUser(t, pool, joinerClerkID)
	helpers.CreateTestUser(t, pool, strangerClerkID)

	c, err := communityService.CreateCommunity(ctx, ownerClerkID, &community.CreateCommunityRequest{
		Name:      "Runners",
		IsPrivate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Runners", c.Name)
	assert.Regexp(t, codePattern, c.Code)

	// join by lowercase code, private community lands in pending
	m, err := communityService.JoinByCode(ctx, joinerClerkID, "  "+strings.ToLower(c.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, community.StatusPending, m.Status)
	assert.Equal(t, joinerUserID, m.UserID)

	// not yet visible to the joiner
	visible, err := communityService.GetVisibleCommunities(ctx, joinerClerkID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	// only the owner may review
	_, err = communityService.SetMembershipStatus(ctx, strangerClerkID, c.ID, joinerUserID, community.StatusAccepted)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err), "expected AuthorizationError, got %v", err)

	m, err = communityService.SetMembershipStatus(ctx, ownerClerkID, c.ID, joinerUserID, community.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, community.StatusAccepted, m.Status)

	visible, err = communityService.GetVisibleCommunities(ctx, joinerClerkID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, c.ID, visible[0].ID)

	// reviewing again finds no pending row
	_, err = communityService.SetMembershipStatus(ctx, ownerClerkID, c.ID, joinerUserID, community.StatusAccepted)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// duplicate join attempt conflicts with the existing membership
	_, err = communityService.JoinByCode(ctx, joinerClerkID, c.Code)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err), "expected ConflictError, got %v", err)
}

func TestCommunityJoinEdgeCases(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	communityService := services.NewCommunityService(pool)

	ctx := context.Background()
	stamp := time.Now().Format("20060102150405")
	ownerClerkID := "user_test_edge_owner_" + stamp
	helpers.CreateTestUser(t, pool, ownerClerkID)

	_, err := communityService.CreateCommunity(ctx, ownerClerkID, &community.CreateCommunityRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	c, err := communityService.CreateCommunity(ctx, ownerClerkID, &community.CreateCommunityRequest{Name: "Swimmers"})
	require.NoError(t, err)
	assert.False(t, c.IsPrivate)

	// unknown code
	_, err = communityService.JoinByCode(ctx, ownerClerkID, "ZZZZZZ")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// owner cannot join their own community
	_, err = communityService.JoinByCode(ctx, ownerClerkID, c.Code)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// public community joins go straight to accepted
	memberClerkID := "user_test_edge_member_" + stamp
	helpers.CreateTestUser(t, pool, memberClerkID)
	m, err := communityService.JoinByCode(ctx, memberClerkID, c.Code)
	require.NoError(t, err)
	assert.Equal(t, community.StatusAccepted, m.Status)
}

func TestCommunityMemberVisibility(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	communityService := services.NewCommunityService(pool)

	ctx := context.Background()
	stamp := time.Now().Format("20060102150405")
	ownerClerkID := "user_test_vis_owner_" + stamp
	acceptedClerkID := "user_test_vis_acc_" + stamp
	pendingClerkID := "user_test_vis_pend_" + stamp
	outsiderClerkID := "user_test_vis_out_" + stamp
	helpers.CreateTestUser(t, pool, ownerClerkID)
	acceptedUserID := helpers.CreateTestUser(t, pool, acceptedClerkID)
	helpers.CreateTestUser(t, pool, pendingClerkID)
	helpers.CreateTestUser(t, pool, outsiderClerkID)

	c, err := communityService.CreateCommunity(ctx, ownerClerkID, &community.CreateCommunityRequest{
		Name:      "Readers",
		IsPrivate: true,
	})
	require.NoError(t, err)

	_, err = communityService.JoinByCode(ctx, acceptedClerkID, c.Code)
	require.NoError(t, err)
	_, err = communityService.JoinByCode(ctx, pendingClerkID, c.Code)
	require.NoError(t, err)
	_, err = communityService.SetMembershipStatus(ctx, ownerClerkID, c.ID, acceptedUserID, community.StatusAccepted)
	require.NoError(t, err)

	// owner sees every membership regardless of status
	members, err := communityService.GetCommunityMembers(ctx, ownerClerkID, c.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// an accepted member only sees accepted members
	members, err = communityService.GetCommunityMembers(ctx, acceptedClerkID, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, community.StatusAccepted, members[0].Status)

	// outsiders see nothing
	_, err = communityService.GetCommunityMembers(ctx, outsiderClerkID, c.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestCommunityInviteQr(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	communityService := services.NewCommunityService(pool)

	ctx := context.Background()
	ownerClerkID := "user_test_qr_" + time.Now().Format("20060102150405")
	helpers.CreateTestUser(t, pool, ownerClerkID)

	c, err := communityService.CreateCommunity(ctx, ownerClerkID, &community.CreateCommunityRequest{Name: "Climbers"})
	require.NoError(t, err)

	qr, err := communityService.GetInviteQr(ctx, ownerClerkID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Code, qr.Code)
	assert.Contains(t, qr.ShareLink, c.Code)

	decoded, err := base64.StdEncoding.DecodeString(qr.QrCodeBase64)
	require.NoError(t, err)
	assert.NotEmpty(t, decoded)
}
