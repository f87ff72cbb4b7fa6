package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TimelineController struct{ tc TimelineUseCase }

func NewTimelineController(tc TimelineUseCase) *TimelineController {
	return &TimelineController{tc: tc}
}

// pageQuery reads ?cursor= and ?limit=; a missing limit means the default.
func pageQuery(c *gin.Context) (string, int, bool) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return "", 0, false
		}
		limit = n
	}
	return c.Query("cursor"), limit, true
}

func (ctrl *TimelineController) GetHomeTimeline(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	cursor, limit, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.tc.GetHomeTimeline(c.Request.Context(), viewerID, cursor, limit)
	if err != nil {
		writeError(c, err, "could not fetch timeline")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ctrl *TimelineController) GetUserTimeline(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cursor, limit, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.tc.GetUserTimeline(c.Request.Context(), targetID, viewerID, cursor, limit)
	if err != nil {
		writeError(c, err, "could not fetch timeline")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ctrl *TimelineController) GetReplies(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cursor, limit, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.tc.GetReplies(c.Request.Context(), postID, viewerID, cursor, limit)
	if err != nil {
		writeError(c, err, "could not fetch replies")
		return
	}
	c.JSON(http.StatusOK, page)
}
