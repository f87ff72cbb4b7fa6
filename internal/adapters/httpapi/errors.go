package httpapi

import (
	"net/http"
	"strconv"

	"socialfeed/internal/adapters/httpapi/middleware"
	"socialfeed/internal/core/follower"
	"socialfeed/internal/core/post"
	"socialfeed/internal/core/timeline"
	"socialfeed/internal/core/user"

	"github.com/gin-gonic/gin"
)

// writeError maps domain error classes to status codes. Anything unclassified
// is a 500 with a generic message.
func writeError(c *gin.Context, err error, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	switch {
	case timeline.ErrInvalidCursor.Has(err):
		status, msg = http.StatusBadRequest, "invalid cursor"
	case post.ErrInvalid.Has(err), follower.ErrSelfFollow.Has(err):
		status, msg = http.StatusBadRequest, err.Error()
	case post.ErrNotFound.Has(err):
		status, msg = http.StatusNotFound, "post not found"
	case user.ErrNotFound.Has(err):
		status, msg = http.StatusNotFound, "user not found"
	case post.ErrForbidden.Has(err):
		status, msg = http.StatusForbidden, "not your post"
	case post.ErrConflict.Has(err), follower.ErrConflict.Has(err):
		status, msg = http.StatusConflict, err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
