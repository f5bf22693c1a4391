package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nirmitee/clinic-api/internal/i18n"
)

// Envelope codes. Clients branch on meta.code (or the legacy top-level code),
// not on the HTTP status: anticipated domain failures ship as HTTP 200, only
// authorization rejections use HTTP 401.
const (
	CodeSuccess      = 200
	CodeFail         = 400
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeInternal     = 500
)

const localeKey = "locale"

// tr resolves a message key against the request locale.
func tr(c *gin.Context, key string) string {
	return i18n.T(c.GetString(localeKey), key)
}

// successData writes {data, meta:{code, message, ...extras}}.
func successData(c *gin.Context, data any, code int, message string, extras map[string]any) {
	meta := gin.H{"code": code, "message": message}
	for k, v := range extras {
		meta[k] = v
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "meta": meta})
}

// successNoData writes {meta:{code, message}}.
func successNoData(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, gin.H{"meta": gin.H{"code": code, "message": message}})
}

// errorNoData writes the structured error envelope {data, meta:{code, message}}
// at HTTP 200; data is usually nil but may carry a hint payload.
func errorNoData(c *gin.Context, message string, code int, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data, "meta": gin.H{"code": code, "message": message}})
}

// errorAuth writes the structured envelope at HTTP 401 and aborts the chain.
// Every authorization-middleware rejection goes through here.
func errorAuth(c *gin.Context, message string, code int) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"data": nil,
		"meta": gin.H{"code": code, "message": message},
	})
}

// legacyError writes the second, flat error form {code, message} at HTTP 200.
// Validation failures and internal errors use it; kept for client
// compatibility alongside the enveloped form.
func legacyError(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, gin.H{"code": code, "message": message})
}

func internalError(c *gin.Context) {
	legacyError(c, CodeInternal, tr(c, "internalError"))
}
