// Package httpapi exposes the tagbook pipeline over HTTP, mirroring the
// teacher's gin-based internal/handlers package: one route group, CORS
// middleware, JSON request binding, and a streamed binary response for the
// PDF itself.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sumbad/web2pdf/internal/logging"
	"github.com/sumbad/web2pdf/internal/merge"
	"github.com/sumbad/web2pdf/internal/middleware"
	"github.com/sumbad/web2pdf/internal/pdfobj"
	"github.com/sumbad/web2pdf/internal/render"
	"github.com/sumbad/web2pdf/internal/toc"
)

// tagbookRequest is the JSON body for POST /api/v1/tagbook.
type tagbookRequest struct {
	BaseURL string `json:"baseUrl" binding:"required"`
}

// RegisterRoutes wires the tagbook pipeline onto the provided gin router.
func RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORSMiddleware())
	{
		v1.OPTIONS("/*path", func(c *gin.Context) {})
		v1.POST("/tagbook", handleTagbook)
	}
}

// handleTagbook discovers the TOC for a base URL, renders and merges every
// page, and streams the resulting tagged PDF back to the client.
func handleTagbook(c *gin.Context) {
	var req tagbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
	defer cancel()

	entries, err := toc.Generate(ctx, req.BaseURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "discovering table of contents: " + err.Error()})
		return
	}

	renderer := render.NewRenderer()
	tmpDir, err := os.MkdirTemp("", "tagbook-http-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating scratch directory: " + err.Error()})
		return
	}
	defer os.RemoveAll(tmpDir)

	var tocEntries []merge.TocEntry
	for i, e := range entries {
		pdfBytes, err := renderer.RenderPage(ctx, e.URL)
		if err != nil {
			logging.Warnf("httpapi: skipping %s: %v", e.URL, err)
			continue
		}
		path := fmt.Sprintf("%s/page-%04d.pdf", tmpDir, i)
		if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
			logging.Warnf("httpapi: skipping %s: could not stage rendered page: %v", e.URL, err)
			continue
		}
		tocEntries = append(tocEntries, merge.TocEntry{Title: e.Title, Level: e.Level, FilePath: path})
	}

	merged, err := merge.Merge(tocEntries)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "merging rendered pages: " + err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := pdfobj.Save(merged, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "writing merged PDF: " + err.Error()})
		return
	}

	c.Header("X-Tagbook-Pages", strconv.Itoa(len(merged.PageIDs())))
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=tagbook.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
