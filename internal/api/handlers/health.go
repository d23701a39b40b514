package handlers

import (
	"net/http"

	"github.com/osa911/portfolio/internal/version"

	"github.com/gin-gonic/gin"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	CaptchaProvider string `json:"captcha_provider"`
}

type HealthHandler struct {
	captchaProvider string
}

func NewHealthHandler(captchaProvider string) *HealthHandler {
	return &HealthHandler{captchaProvider: captchaProvider}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:          "ok",
		Version:         version.GetVersionString(),
		CaptchaProvider: h.captchaProvider,
	})
}
