package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	app "photoserv/src/app"
	cfg "photoserv/src/configuration"
	notify "photoserv/src/notify"
	db "photoserv/src/repository"
)

// Payloads above this are rejected before any store write.
const maxUploadBytes = 15 << 20

type (
	AppHandler struct {
		s3         *app.MinioS3Client
		admins     *db.AllowList
		mail       *notify.Client
		signInPath string
	}

	InterestBody struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Message string `json:"message" binding:"required"`
		Photo   string `json:"photo"`
	}

	DeletePhotoBody struct {
		Name string `json:"name" binding:"required"`
	}
)

func NewHandler(config *cfg.Properties, s3Client *app.MinioS3Client, mail *notify.Client) *AppHandler {
	admins := db.NewAllowList(config.Auth.AdminEmails)
	if admins.Size() == 0 {
		log.Warn().Msg("admin allow-list is empty, uploads will be rejected for everyone")
	}
	return &AppHandler{
		s3:         s3Client,
		admins:     admins,
		mail:       mail,
		signInPath: config.Auth.SignInPath,
	}
}

func (a *AppHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPhotoList returns every image in the bucket, newest first. An empty
// bucket is an empty array, not an error.
func (a *AppHandler) GetPhotoList(c *gin.Context) {
	photos, err := a.s3.ListPhotos(c.Request.Context())
	if err != nil {
		a.storeError(c, err, "can not fetch photos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// PostPhoto ingests one upload. RequireAdmin already ran, so the admin
// email is on the context.
func (a *AppHandler) PostPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no file in request"})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is empty"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file exceeds the 15 MiB limit"})
		return
	}

	key := app.MakeKey(c.PostForm("category"), header.Filename)
	if err := a.s3.UploadFile(c.Request.Context(), key, file, header.Size,
		header.Header.Get("Content-Type")); err != nil {
		a.storeError(c, err, "can not store photo")
		return
	}

	admin := c.GetString(adminEmailKey)
	log.Info().Str("key", key).Str("uploadedBy", admin).Int64("size", header.Size).
		Msg("photo uploaded")
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"uploadedBy": admin,
		"name":       key,
		"url":        a.s3.PublicURL(key),
	})
}

// DeletePhoto removes one object by key.
func (a *AppHandler) DeletePhoto(c *gin.Context) {
	var body DeletePhotoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name is required"})
		return
	}
	if err := a.s3.DeleteFile(c.Request.Context(), body.Name); err != nil {
		a.storeError(c, err, "can not delete photo")
		return
	}
	log.Info().Str("key", body.Name).Str("deletedBy", c.GetString(adminEmailKey)).
		Msg("photo deleted")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PostInterest mails the two notification emails for a purchase-interest
// submission. Nothing is persisted.
func (a *AppHandler) PostInterest(c *gin.Context) {
	var body InterestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name, email and message are required"})
		return
	}
	err := a.mail.SendInterest(c.Request.Context(), notify.Interest{
		Name:    body.Name,
		Email:   body.Email,
		Message: body.Message,
		Photo:   body.Photo,
	})
	if err != nil {
		log.Error().Err(err).Msg("can not send interest notification")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "can not send notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TestEmail sends a single probe message to the seller address.
func (a *AppHandler) TestEmail(c *gin.Context) {
	if err := a.mail.SendTest(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("test email failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "email failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// storeError maps store failures to a generic 500. The response carries
// no internal detail; the log gets all of it.
func (a *AppHandler) storeError(c *gin.Context, err error, message string) {
	if errors.Is(err, app.ErrNotConfigured) {
		log.Error().Str("path", c.Request.URL.Path).
			Msg("object store is not configured, set S3_ACCESS_KEY and S3_SECRET_KEY")
	} else {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("object store call failed")
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": message})
}
