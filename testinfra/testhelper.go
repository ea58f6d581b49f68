package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"time"

	"greenroom/authority"
	"greenroom/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx build a session context for tests
func BuildSecCtx(uid types.ID, role authority.Role) *session.Context {
	return &session.Context{
		Token:       "test-token",
		Identity:    session.Identity{ID: uid, Name: "user-" + uid.String()},
		Role:        role,
		SigningTime: time.Now(),
	}
}

// ExecuteRequest run the request against the router and return status, body
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, error) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(bodyBytes), nil
}

// WithSecCtx inject the session context into the request context before routing
func WithSecCtx(sec *session.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.SaveSecurityContext(c, sec)
		c.Next()
	}
}
