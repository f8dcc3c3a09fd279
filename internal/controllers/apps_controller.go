package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apps"
)

// AppsController serves the shared application catalog so every client
// launches from the same descriptor set. The catalog is read-only over
// HTTP; registration happens in code.
type AppsController struct {
	Catalog []apps.Descriptor
}

// List returns the catalog, optionally narrowed by ?q= substring and
// ?category= filters.
func (ac *AppsController) List(c *gin.Context) {
	out := apps.Filter(ac.Catalog, c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"data": out, "meta": gin.H{"total": len(out)}})
}

// Get returns one descriptor by id.
func (ac *AppsController) Get(c *gin.Context) {
	id := c.Param("app_id")
	for _, d := range ac.Catalog {
		if d.ID == id {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
}
