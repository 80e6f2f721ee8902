package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const TenantHeader = "X-Tenant-ID"

// typed context key so the value cannot collide with other packages
type tenantKey struct{}

var tenantContextKey = tenantKey{}

// Tenant extracts the tenant id header and rejects requests without one.
// Every resource in the system is tenant-scoped, so there is no anonymous
// access path past this point.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(TenantHeader))
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "bad_request",
					"message": TenantHeader + " header is required",
				},
			})
			return
		}

		ctx := context.WithValue(c.Request.Context(), tenantContextKey, tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// TenantFromContext returns the tenant id placed by Tenant, or "".
func TenantFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantContextKey).(string)
	return id
}
