package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BuildSession builds an authenticated session for direct service calls.
func BuildSession(uid types.ID, name, globalRole string) *session.Session {
	return &session.Session{
		Token: uuid.New().String(),
		Identity: session.Identity{
			ID: uid, Name: name, Nickname: name,
			GlobalRole: globalRole, IsActive: true,
		},
		Context: context.Background(),
	}
}

// SessionMiddleware injects a fixed session, standing in for the auth filter
// in router tests.
func SessionMiddleware(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), resp.Header
}
