package handlers

import (
	"net/http"

	"memebot/internal/middleware"
	"memebot/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler implements the single-reviewer login for the review page.
type AuthHandler struct {
	passwordHash []byte
}

func NewAuthHandler(passwordHash []byte) *AuthHandler {
	return &AuthHandler{passwordHash: passwordHash}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/login.html", gin.H{"Title": "Reviewer Login"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	password := c.PostForm("password")
	if !utils.CheckPasswordHash(password, h.passwordHash) {
		c.HTML(http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Reviewer Login",
			"Error": "Wrong password",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.ReviewerKey, true)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "auth/login.html", gin.H{
			"Title": "Reviewer Login",
			"Error": "Could not save session",
		})
		return
	}
	c.Redirect(http.StatusFound, "/review")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}
