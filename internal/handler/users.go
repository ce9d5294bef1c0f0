package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"drivenpass/internal/account"
	"drivenpass/internal/middleware"
)

type UserHandler struct {
	Accounts *account.Service
	Log      *slog.Logger
}

type credentialsBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) SignUp(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeInvalidBody(c)
		return
	}

	id, err := h.Accounts.SignUp(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, id)
}

func (h *UserHandler) SignIn(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeInvalidBody(c)
		return
	}

	res, err := h.Accounts.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) SignOut(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"name": "UnauthorizedError", "message": "not signed in"})
		return
	}
	if err := h.Accounts.SignOut(c.Request.Context(), p.TokenID); err != nil {
		writeError(c, h.Log, err)
		return
	}
	h.Log.Info("signed out", "owner_id", p.Account.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
