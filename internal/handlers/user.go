package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-hq/taskflow-api/internal/dto"
	apierrors "github.com/taskflow-hq/taskflow-api/internal/errors"
	"github.com/taskflow-hq/taskflow-api/internal/middleware"
	"github.com/taskflow-hq/taskflow-api/internal/services"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// UserHandler serves the team roster.
type UserHandler struct {
	board *services.BoardService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(board *services.BoardService) *UserHandler {
	return &UserHandler{board: board}
}

// ListUsers returns the roster with per-user workloads.
func (h *UserHandler) ListUsers(c *gin.Context) {
	snapshot := h.board.Snapshot()
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserViews(snapshot.Users, snapshot.Tasks)})
}

// RegisterStaff adds a staff member to the roster. Roster registrations are
// active immediately because an admin created them.
func (h *UserHandler) RegisterStaff(c *gin.Context) {
	var req dto.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Name and a valid email are required")
		return
	}

	user := h.board.RegisterStaff(req.Name, req.Email)

	snapshot := h.board.Snapshot()
	c.JSON(http.StatusCreated, dto.ToUserView(user, snapshot.Tasks))
}

// UpdateUser merges a partial profile update. Staff may edit their own
// profile; admins may edit anyone's.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	targetID := c.Param("id")
	if !actor.IsAdmin() && actor.ID != targetID {
		apierrors.Forbidden(c, "You can only edit your own profile")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.board.UpdateUser(targetID, store.UserPatch{
		Name:    req.Name,
		Picture: req.Picture,
		Bio:     req.Bio,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	snapshot := h.board.Snapshot()
	c.JSON(http.StatusOK, dto.ToUserView(*user, snapshot.Tasks))
}

// ToggleActive flips a user's active flag. Admin-gated by routing.
func (h *UserHandler) ToggleActive(c *gin.Context) {
	user, err := h.board.ToggleUserActive(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	snapshot := h.board.Snapshot()
	c.JSON(http.StatusOK, dto.ToUserView(*user, snapshot.Tasks))
}

// DeleteUser removes a staff member and clears their task assignments.
// The destructive step must be confirmed explicitly with ?confirm=true.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if c.Query("confirm") != "true" {
		apierrors.ConfirmationRequired(c, "Removing a staff member requires confirm=true")
		return
	}

	h.board.DeleteUser(c.Param("id"))

	c.JSON(http.StatusOK, gin.H{"message": "Staff member removed"})
}

// Workload returns the assignment summary for one user.
func (h *UserHandler) Workload(c *gin.Context) {
	snapshot := h.board.Snapshot()
	if _, ok := snapshot.FindUser(c.Param("id")); !ok {
		apierrors.NotFound(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, store.UserWorkload(snapshot.Tasks, c.Param("id")))
}
