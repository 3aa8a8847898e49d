package handlers

import (
	"fmt"
	"strconv"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/arnold/fitchallenge-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) GetChallenges(c *fiber.Ctx) error {
	challenges, err := h.Challenges.ListMine(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(challenges)
}

func (h *Handler) CreateChallenge(c *fiber.Ctx) error {
	var req models.CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.Challenges.Create(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) GetChallenge(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	ch, err := h.Challenges.Get(c.UserContext(), challengeID, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ch)
}

func (h *Handler) DeleteChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	if err := h.Challenges.Delete(c.UserContext(), challengeID, userID); err != nil {
		return h.fail(c, err)
	}

	h.hub.Broadcast(challengeID, userID, EventChallengeDeleted, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinChallenge joins by invite code. Codes are matched in upper case.
func (h *Handler) JoinChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	code, ok := inviteCode(c)
	if !ok {
		return badRequest(c, "Invite code is required")
	}

	ch, err := h.Challenges.JoinByCode(c.UserContext(), code, userID)
	if err != nil {
		return h.fail(c, err)
	}
	h.announceJoin(c, ch, userID)
	return c.JSON(ch)
}

// JoinAfterSignup is the join the client replays after registration. Joining a
// challenge twice succeeds and is only announced once.
func (h *Handler) JoinAfterSignup(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	code, ok := inviteCode(c)
	if !ok {
		return badRequest(c, "Invite code is required")
	}

	wasMember := false
	if preview, err := h.Challenges.GetByInviteCode(c.UserContext(), code); err == nil {
		wasMember = preview.HasParticipant(userID)
	}

	ch, err := h.Challenges.JoinAfterSignup(c.UserContext(), code, userID)
	if err != nil {
		return h.fail(c, err)
	}
	if !wasMember {
		h.announceJoin(c, ch, userID)
	}
	return c.JSON(ch)
}

func inviteCode(c *fiber.Ctx) (string, bool) {
	var req models.JoinChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return "", false
	}
	code := services.NormalizeInviteCode(req.InviteCode)
	return code, code != ""
}

func (h *Handler) announceJoin(c *fiber.Ctx, ch *models.Challenge, userID uuid.UUID) {
	h.hub.Broadcast(ch.ID, userID, EventMemberJoined, nil)
	if ch.CreatedBy == userID {
		return
	}
	h.notify(c, ch.CreatedBy, models.NotificationParticipantJoined,
		"New challenger",
		fmt.Sprintf("%s joined %s", h.displayName(c, userID), ch.Name),
		map[string]interface{}{"challengeId": ch.ID},
	)
}

// PreviewInvite shows what an invite code leads to. No authentication required.
func (h *Handler) PreviewInvite(c *fiber.Ctx) error {
	preview, err := h.Challenges.GetByInviteCode(c.UserContext(), services.NormalizeInviteCode(c.Params("code")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(preview)
}

func (h *Handler) InviteUser(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	var req models.InviteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	invitation, err := h.Challenges.Invite(c.UserContext(), challengeID, req.UserID, userID)
	if err != nil {
		return h.fail(c, err)
	}

	name := "a challenge"
	if ch, err := h.Challenges.Get(c.UserContext(), challengeID, userID); err == nil {
		name = ch.Name
	}
	h.notify(c, req.UserID, models.NotificationChallengeInvite,
		"Challenge invite",
		fmt.Sprintf("%s invited you to %s", h.displayName(c, userID), name),
		map[string]interface{}{"challengeId": challengeID, "invitationId": invitation.ID},
	)
	return c.Status(fiber.StatusCreated).JSON(invitation)
}

func (h *Handler) GetParticipants(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	participants, err := h.Challenges.Participants(c.UserContext(), challengeID, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(participants)
}

func (h *Handler) RemoveParticipant(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}
	participantID, ok := paramID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	ch, err := h.Challenges.RemoveParticipant(c.UserContext(), challengeID, participantID, userID)
	if err != nil {
		return h.fail(c, err)
	}

	h.hub.Broadcast(challengeID, userID, EventMemberLeft, fiber.Map{"userId": participantID})
	h.notify(c, participantID, models.NotificationParticipantRemoved,
		"Removed from challenge",
		fmt.Sprintf("You were removed from %s", ch.Name),
		map[string]interface{}{"challengeId": challengeID},
	)
	return c.JSON(ch)
}

func (h *Handler) LeaveChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	if err := h.Challenges.Leave(c.UserContext(), challengeID, userID); err != nil {
		return h.fail(c, err)
	}

	h.hub.Broadcast(challengeID, userID, EventMemberLeft, fiber.Map{"userId": userID})
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	// Same visibility as the challenge itself.
	if _, err := h.Challenges.Get(c.UserContext(), challengeID, middleware.GetUserID(c)); err != nil {
		return h.fail(c, err)
	}

	entries, err := h.Leaderboard.Compute(c.UserContext(), challengeID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}

// GetChallengeActivity returns paginated activity for a challenge
func (h *Handler) GetChallengeActivity(c *fiber.Ctx) error {
	challengeID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := h.Activity.List(c.UserContext(), challengeID, middleware.GetUserID(c), page, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}
