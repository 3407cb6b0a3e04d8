package sessions

import (
	"net/http"
	"time"

	"worksite/account"
	"worksite/bizerror"
	"worksite/common"
	"worksite/persistence"
	"worksite/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// one login attempt per second with small bursts, shared per process
var loginLimiter = rate.NewLimiter(rate.Every(time.Second), 10)

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
	g.GET("", SessionInfoHandler)
}

func SimpleLoginHandler(c *gin.Context) {
	if !loginLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, &common.ErrorBody{Code: "common.too_many_requests", Message: "too many login attempts"})
		return
	}

	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	user := account.User{}
	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	err := db.Model(&account.User{}).
		Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).
		Where("is_deleted = ?", false).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}
	if !user.IsActive {
		panic(bizerror.ErrUnauthenticated)
	}

	token := uuid.New().String()
	identity := session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname,
		GlobalRole: user.GlobalRole, IsActive: user.IsActive}
	sec := session.Session{Token: token, Identity: identity, SigningTime: time.Now()}
	session.TokenCache.Set(token, &sec, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &identity)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SessionInfoHandler(c *gin.Context) {
	token, err := c.Cookie(session.KeySecToken)
	if err != nil {
		panic(bizerror.ErrUnauthenticated)
	}
	value, found := session.TokenCache.Get(token)
	if !found {
		panic(bizerror.ErrUnauthenticated)
	}
	sec, ok := value.(*session.Session)
	if !ok {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, &sec.Identity)
}
