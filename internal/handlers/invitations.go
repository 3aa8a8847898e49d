package handlers

import (
	"fmt"

	"github.com/arnold/fitchallenge-api/internal/middleware"
	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetPendingInvitations(c *fiber.Ctx) error {
	pending, err := h.Invitations.ListPending(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pending)
}

func (h *Handler) RespondToInvitation(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	invitationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid invitation ID")
	}

	var req models.RespondInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.Invitations.Respond(c.UserContext(), invitationID, req.Accept, userID)
	if err != nil {
		return h.fail(c, err)
	}

	inv := result.Invitation
	if result.Joined {
		h.hub.Broadcast(inv.ChallengeID, userID, EventMemberJoined, nil)
	}

	notifType, verb := models.NotificationInvitationDeclined, "declined"
	if req.Accept {
		notifType, verb = models.NotificationInvitationAccepted, "accepted"
	}
	h.notify(c, inv.InvitedBy, notifType,
		"Invitation "+verb,
		fmt.Sprintf("%s %s your challenge invitation", h.displayName(c, userID), verb),
		map[string]interface{}{"challengeId": inv.ChallengeID, "invitationId": inv.ID},
	)

	return c.JSON(fiber.Map{
		"challengeId": inv.ChallengeID,
		"invitation":  inv,
		"joined":      result.Joined,
	})
}
