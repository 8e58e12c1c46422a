package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/seb_proctor/internal/store"
)

type HealthController struct {
	Store store.MetadataStore
}

func (hc *HealthController) Get(c *gin.Context) {
	if err := hc.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
