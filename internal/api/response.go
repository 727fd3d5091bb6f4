package api

import "github.com/gin-gonic/gin"

// Envelope is the uniform response shape. Kind mirrors the alert kinds the
// UI renders: error, success, info.
type Envelope struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status, code int, kind, message string, data interface{}) {
	c.JSON(status, Envelope{Code: code, Kind: kind, Message: message, Data: data})
}

// success writes a 2xx response with a success alert.
func success(c *gin.Context, status int, message string, data interface{}) {
	respond(c, status, 0, "success", message, data)
}

// info writes a 200 with an informational alert.
func info(c *gin.Context, message string, data interface{}) {
	respond(c, 200, 0, "info", message, data)
}

// fail writes an error response with a fixed user-facing message.
func fail(c *gin.Context, status, code int, message string) {
	respond(c, status, code, "error", message, nil)
}
