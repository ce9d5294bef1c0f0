package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"drivenpass/internal/apperr"
	"drivenpass/internal/middleware"
	"drivenpass/internal/vault"
)

// SecretHandler serves list, get, create and delete for one secret variant.
type SecretHandler[P any] struct {
	Store *vault.Store[P]
	Bind  func(c *gin.Context) (vault.NewSecret[P], error)
	Log   *slog.Logger
}

type credentialBody struct {
	Title    string `json:"title" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type networkBody struct {
	Title    string `json:"title" binding:"required"`
	Network  string `json:"network" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func BindCredential(c *gin.Context) (vault.NewSecret[vault.CredentialFields], error) {
	var body credentialBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return vault.NewSecret[vault.CredentialFields]{}, err
	}
	return vault.NewSecret[vault.CredentialFields]{
		Title:    body.Title,
		Fields:   vault.CredentialFields{URL: body.URL, Username: body.Username},
		Password: body.Password,
	}, nil
}

func BindNetwork(c *gin.Context) (vault.NewSecret[vault.NetworkFields], error) {
	var body networkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return vault.NewSecret[vault.NetworkFields]{}, err
	}
	return vault.NewSecret[vault.NetworkFields]{
		Title:    body.Title,
		Fields:   vault.NetworkFields{Network: body.Network},
		Password: body.Password,
	}, nil
}

func ownerID(c *gin.Context) (int64, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"name": string(apperr.KindUnauthorized), "message": "not signed in"})
		return 0, false
	}
	return p.Account.ID, true
}

// secretID rejects ids that are not all digits or not positive with 422.
func secretID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"name": string(apperr.KindValidation), "message": "id must be a positive integer"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"name": string(apperr.KindValidation), "message": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *SecretHandler[P]) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	secrets, err := h.Store.ListAll(c.Request.Context(), owner)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, secrets)
}

func (h *SecretHandler[P]) Get(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := secretID(c)
	if !ok {
		return
	}
	secret, err := h.Store.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, secret)
}

func (h *SecretHandler[P]) Create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	in, err := h.Bind(c)
	if err != nil {
		writeInvalidBody(c)
		return
	}
	secret, err := h.Store.Create(c.Request.Context(), owner, in)
	if err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, secret)
}

func (h *SecretHandler[P]) Delete(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := secretID(c)
	if !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), owner, id); err != nil {
		writeError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
