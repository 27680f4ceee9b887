package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

const apiVersion = "1.0.0"

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio API", "version": apiVersion})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) listPosts(c *gin.Context) {
	posts, err := h.Content.ListPosts(c.Request.Context(), false)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(posts))
}

func (h *handlers) getPost(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	p, err := h.Content.GetPost(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) getPostBySlug(c *gin.Context) {
	p, err := h.Content.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listProjects(c *gin.Context) {
	projects, err := h.Content.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(projects))
}

func (h *handlers) getProject(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	p, err := h.Content.GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *handlers) submitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	msg, err := h.Messages.Submit(c.Request.Context(), &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Message received",
		"data": gin.H{
			"name":        msg.Name,
			"email":       msg.Email,
			"received_at": msg.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
