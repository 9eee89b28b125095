package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/thecodingmontana/zadaci-api/internal/constants"
	"github.com/thecodingmontana/zadaci-api/internal/dto"
	apierrors "github.com/thecodingmontana/zadaci-api/internal/errors"
	"github.com/thecodingmontana/zadaci-api/internal/middleware"
	"github.com/thecodingmontana/zadaci-api/internal/models"
	"github.com/thecodingmontana/zadaci-api/internal/services"
)

// InviteHandler coordinates invite HTTP handlers. Workspace-scoped routes
// sit behind the membership middleware; the invite-code routes are public
// so invited people can respond before they have an account.
type InviteHandler struct {
	inviteService *services.InviteService
	authService   *services.AuthService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *services.InviteService, authService *services.AuthService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		authService:   authService,
	}
}

// SendInvites creates invites for a batch of addresses.
func (h *InviteHandler) SendInvites(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SendInvitesRequest struct {
		Invites []struct {
			Email string      `json:"email" binding:"required"`
			Role  models.Role `json:"role"`
		} `json:"invites" binding:"required,min=1"`
	}

	var req SendInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inviter, err := h.authService.GetUser(userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	requests := make([]services.InviteRequest, len(req.Invites))
	for i, invite := range req.Invites {
		requests[i] = services.InviteRequest{
			Email: invite.Email,
			Role:  invite.Role,
		}
	}

	result, err := h.inviteService.SendInvites(&workspace, inviter, requests)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResendInvites refreshes pending invites and sends their emails again.
func (h *InviteHandler) ResendInvites(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ResendRequest struct {
		Emails []string `json:"emails" binding:"required,min=1"`
	}

	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inviter, err := h.authService.GetUser(userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	result, err := h.inviteService.ResendInvites(&workspace, inviter, req.Emails)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListInvites returns all invites of the workspace.
func (h *InviteHandler) ListInvites(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	invites, err := h.inviteService.ListInvites(workspace.ID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	items := make([]dto.InviteDTO, len(invites))
	for i, invite := range invites {
		items[i] = dto.ToInviteDTO(invite)
	}

	c.JSON(http.StatusOK, gin.H{
		"invites": items,
	})
}

// CancelInvites withdraws pending invites.
func (h *InviteHandler) CancelInvites(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	type CancelRequest struct {
		Emails []string `json:"emails" binding:"required,min=1"`
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	removed, err := h.inviteService.CancelInvites(workspace.ID, req.Emails)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

// WithdrawInvite lets a signed-in invitee pull back their own pending
// invite. The route needs a session but not workspace membership, since the
// invitee is not a member yet.
func (h *InviteHandler) WithdrawInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	type WithdrawRequest struct {
		Email string `json:"email"`
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Email != "" && !strings.EqualFold(strings.TrimSpace(req.Email), user.Email) {
		respondInviteError(c, services.ErrNotInviteOwner)
		return
	}

	if err := h.inviteService.WithdrawInvite(c.Param("workspaceId"), user.Email); err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite withdrawn",
	})
}

// GetInvite shows the public preview of an invite for the landing page.
func (h *InviteHandler) GetInvite(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	invite, workspace, err := h.inviteService.GetInvite(c.Param("inviteCode"), email)
	if err != nil {
		respondInviteError(c, err)
		return
	}
	if invite.Expired(time.Now()) {
		respondInviteError(c, services.ErrInviteExpired)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitePreviewDTO(*invite, *workspace))
}

// AcceptInvite joins the caller to the workspace, creating their account on
// the fly when needed, and logs them in.
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	type AcceptRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, workspace, err := h.inviteService.AcceptInvite(c.Param("inviteCode"), req.Email)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      dto.ToUserDTO(*user),
		"workspace": dto.ToWorkspaceDTO(*workspace, false),
	})
}

// DeclineInvite turns an invite down.
func (h *InviteHandler) DeclineInvite(c *gin.Context) {
	type DeclineRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.inviteService.DeclineInvite(c.Param("inviteCode"), req.Email); err != nil {
		respondInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite declined",
	})
}

// respondInviteError maps invite service errors to HTTP responses.
func respondInviteError(c *gin.Context, err error) {
	var noPending *services.NoPendingInvitesError

	switch {
	case errors.As(err, &noPending):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrNotInviteOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNoInvitesGiven):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Something went wrong")
	}
}
