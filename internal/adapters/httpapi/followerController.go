package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type FollowerController struct{ fc FollowerUseCase }

func NewFollowerController(fc FollowerUseCase) *FollowerController {
	return &FollowerController{fc: fc}
}

func (ctl *FollowerController) FollowUser(c *gin.Context) {
	var req struct {
		FollowedID int64 `json:"followed_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctl.fc.FollowUser(c.Request.Context(), userID, req.FollowedID); err != nil {
		writeError(c, err, "could not follow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully followed user"})
}

func (ctl *FollowerController) UnfollowUser(c *gin.Context) {
	var req struct {
		UnfollowedID int64 `json:"unfollowed_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctl.fc.UnfollowUser(c.Request.Context(), userID, req.UnfollowedID); err != nil {
		writeError(c, err, "could not unfollow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully unfollowed user"})
}

func (ctl *FollowerController) GetFollowersByUserID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	followers, err := ctl.fc.GetFollowersByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "could not get followers")
		return
	}
	c.JSON(http.StatusOK, followers)
}

func (ctl *FollowerController) GetFollowingByUserID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	following, err := ctl.fc.GetFollowingByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "could not get following")
		return
	}
	c.JSON(http.StatusOK, following)
}

func (ctl *FollowerController) IsFollowing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	following, err := ctl.fc.IsFollowing(c.Request.Context(), userID, targetID)
	if err != nil {
		writeError(c, err, "could not check follow status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}
