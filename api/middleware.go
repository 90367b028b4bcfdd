package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDMiddleware reuses a client request id only when it is a uuid,
// so arbitrary header text never reaches the logs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, ok := parseRequestID(c.GetHeader(RequestIDHeaderKey))
		if !ok {
			requestID = generateRequestID()
		}
		c.Header(RequestIDHeaderKey, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Next()
	}
}

// ginLoggerMiddleware writes one access line per request, tagged with the
// request id and the session the request ran against.
func ginLoggerMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s \"%s %s %s\" %d %s request_id=%s session_id=%s\n",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.ClientIP,
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			keyString(param.Keys, RequestIDContextKey),
			keyString(param.Keys, SessionContextKey),
		)
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeaderKey+", "+SessionHeaderKey)
		c.Header("Access-Control-Expose-Headers", RequestIDHeaderKey+", "+SessionHeaderKey)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func parseRequestID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func keyString(keys map[string]any, key string) string {
	if v, ok := keys[key].(string); ok && v != "" {
		return v
	}
	return "-"
}

func generateRequestID() string {
	return uuid.New().String()
}
