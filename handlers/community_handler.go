package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitHiveAPI/internal/types/community"
	"habitHiveAPI/middleware"
	"habitHiveAPI/services"
)

type CommunityHandler struct {
	communityService *services.CommunityService
}

func NewCommunityHandler(communityService *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
	}
}

func (h *CommunityHandler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req community.CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.communityService.CreateCommunity(ctx, clerkID, &req)
	if err != nil {
		log.Printf("CreateCommunity: %v", err)
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CommunityHandler) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req community.JoinCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		respondWithError(w, http.StatusBadRequest, "Code is required")
		return
	}

	membership, err := h.communityService.JoinByCode(ctx, clerkID, req.Code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, membership)
}

func (h *CommunityHandler) ReviewMembership(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	communityID, err := uuid.Parse(vars["communityId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid community id")
		return
	}
	memberUserID, err := uuid.Parse(vars["memberUserId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid member user id")
		return
	}

	var req community.ReviewMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	membership, err := h.communityService.SetMembershipStatus(ctx, clerkID, communityID, memberUserID, req.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, membership)
}

func (h *CommunityHandler) GetCommunities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	communities, err := h.communityService.GetVisibleCommunities(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, communities)
}

func (h *CommunityHandler) GetCommunityMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	communityID, err := uuid.Parse(mux.Vars(r)["communityId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid community id")
		return
	}

	members, err := h.communityService.GetCommunityMembers(ctx, clerkID, communityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, members)
}

func (h *CommunityHandler) GetInviteQr(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	communityID, err := uuid.Parse(mux.Vars(r)["communityId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid community id")
		return
	}

	invite, err := h.communityService.GetInviteQr(ctx, clerkID, communityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, invite)
}
