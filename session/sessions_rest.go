package session

import (
	"net/http"
	"time"

	"greenroom/bizerror"
	"greenroom/persistence"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionsHandler struct {
	dataSource *persistence.DataSourceManager
}

func RegisterSessionsHandler(r *gin.Engine, ds *persistence.DataSourceManager, middleWares ...gin.HandlerFunc) {
	handler := &sessionsHandler{dataSource: ds}

	g := r.Group("/v1/sessions", middleWares...)
	g.POST("", handler.handleLogin)

	s := r.Group("/v1/session", SimpleAuthFilter())
	s.GET("", handleDetailSession)
	s.DELETE("", handleLogout)
}

func (h *sessionsHandler) handleLogin(c *gin.Context) {
	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user := User{}
	db := h.dataSource.GormDB()
	if err := db.Where(&User{Name: login.Name, Secret: HashSha256(login.Password)}).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}

	token := uuid.New().String()
	securityContext := Context{
		Token:       token,
		Identity:    Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Role:        user.Role,
		SigningTime: time.Now(),
	}
	TokenCache.Set(token, &securityContext, cache.DefaultExpiration)

	c.SetCookie(KeySecToken, token, int(TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &securityContext)
}

func handleDetailSession(c *gin.Context) {
	sec := FindSecurityContext(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, sec)
}

func handleLogout(c *gin.Context) {
	sec := FindSecurityContext(c)
	if sec != nil {
		TokenCache.Delete(sec.Token)
	}
	c.SetCookie(KeySecToken, "", -1, "/", "", false, false)
	c.Status(http.StatusNoContent)
}
