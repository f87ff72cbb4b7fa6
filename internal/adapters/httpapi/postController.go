package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PostController struct{ pc PostUseCase }

func NewPostController(pc PostUseCase) *PostController { return &PostController{pc: pc} }

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (ctl *PostController) CreatePost(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := ctl.pc.CreatePost(c.Request.Context(), userID, req.Content)
	if err != nil {
		writeError(c, err, "could not create post")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *PostController) Reply(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	parentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := ctl.pc.Reply(c.Request.Context(), userID, parentID, req.Content)
	if err != nil {
		writeError(c, err, "could not create reply")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *PostController) Repost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := ctl.pc.Repost(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, err, "could not repost")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *PostController) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ctl.pc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err, "could not delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *PostController) LikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	changed, err := ctl.pc.LikePost(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, err, "could not like post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true, "changed": changed})
}

func (ctl *PostController) UnlikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	changed, err := ctl.pc.UnlikePost(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, err, "could not unlike post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false, "changed": changed})
}
