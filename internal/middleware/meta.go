package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-companion-api/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	degradedKey     = "degraded"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetDegraded records which dashboard widgets fell back to defaults.
func SetDegraded(c *gin.Context, widgets []string) {
	meta := ensureMeta(c)
	if widgets == nil {
		widgets = []string{}
	}
	meta[degradedKey] = widgets
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	newMeta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, newMeta)
	}
	return newMeta
}
