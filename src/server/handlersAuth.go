package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	app "photoserv/src/app"
)

// clientPrincipalHeader carries the identity assertion injected by the
// platform's authentication proxy. The proxy strips any caller-supplied
// value of this header before the request reaches us; that upstream
// guarantee is the trust boundary, nothing here verifies it.
const clientPrincipalHeader = "X-MS-CLIENT-PRINCIPAL"

// adminEmailKey is the gin context key the gate sets for downstream
// audit logging of who performed an upload.
const adminEmailKey = "adminEmail"

func requestPrincipal(c *gin.Context) (*app.Principal, bool) {
	return app.DecodePrincipal(c.GetHeader(clientPrincipalHeader))
}

// redirectSignIn sends an anonymous caller through the platform sign-in
// endpoint, carrying the requested path so they come back afterwards.
func (a *AppHandler) redirectSignIn(c *gin.Context) {
	target := a.signInPath + "?post_login_redirect_uri=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// RequireSignIn only asserts that some identity is present; it performs
// no admin check. A malformed header is indistinguishable from no
// header: both redirect.
func (a *AppHandler) RequireSignIn(c *gin.Context) {
	if _, ok := requestPrincipal(c); !ok {
		a.redirectSignIn(c)
		return
	}
	c.Next()
}

// RequireAdmin classifies the request as anonymous (redirect),
// signed-in-but-not-authorized (403, deliberately distinct from the
// redirect) or admin. On success the resolved email lands on the
// context. Presence of the header alone is never enough: the allow-list
// check is mandatory.
func (a *AppHandler) RequireAdmin(c *gin.Context) {
	principal, ok := requestPrincipal(c)
	if !ok {
		a.redirectSignIn(c)
		return
	}
	email, ok := principal.Email()
	if !ok || !a.admins.Contains(email) {
		log.Warn().Str("email", email).Str("path", c.Request.URL.Path).
			Msg("signed-in caller is not an administrator")
		c.AbortWithStatusJSON(http.StatusForbidden,
			gin.H{"ok": false, "error": "signed in, but not authorized"})
		return
	}
	c.Set(adminEmailKey, app.NormalizeEmail(email))
	c.Next()
}

// Login sits behind RequireSignIn, so reaching it means the platform
// already authenticated the caller; send them home.
func (a *AppHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// Me reports what the trusted header says about the caller.
func (a *AppHandler) Me(c *gin.Context) {
	principal, ok := requestPrincipal(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	email, _ := principal.Email()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"email":         email,
		"admin":         a.admins.Contains(email),
	})
}
