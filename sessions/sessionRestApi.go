package sessions

import (
	"net/http"
	"time"

	"lattice/account"
	"lattice/bizerror"
	"lattice/session"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionSecurityContext)
}

// DetailSessionSecurityContext refreshes the signed-in session within its
// remaining ttl and returns it.
func DetailSessionSecurityContext(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(sec.SigningTime)
	if ttl <= 0 {
		panic(bizerror.ErrUnauthenticated)
	}

	perms := account.LoadPermFunc(c.Request.Context(), sec.Identity.ID)
	securityContext := session.Session{Token: sec.Token, Identity: sec.Identity, Perms: perms, SigningTime: now}
	session.TokenCache.Set(sec.Token, &securityContext, ttl)
	c.JSON(http.StatusOK, &securityContext)
}
