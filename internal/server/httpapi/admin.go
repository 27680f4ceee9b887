package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

type postRequest struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	ReadTime  string   `json:"readTime"`
	Published bool     `json:"published"`
}

func (r postRequest) model() *models.Post {
	return &models.Post{
		Title:     r.Title,
		Slug:      r.Slug,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		Category:  r.Category,
		Tags:      r.Tags,
		ReadTime:  r.ReadTime,
		Published: r.Published,
	}
}

type projectRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	GitHub       string   `json:"github"`
	Demo         *string  `json:"demo"`
}

func (r projectRequest) model() *models.Project {
	return &models.Project{
		Name:         r.Name,
		Description:  r.Description,
		Technologies: r.Technologies,
		GitHub:       r.GitHub,
		Demo:         r.Demo,
	}
}

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type uploadResponse struct {
	Media     *models.Media `json:"media"`
	UploadURL string        `json:"upload_url"`
	ExpiresIn int64         `json:"expires_in"`
}

func (h *handlers) adminListPosts(c *gin.Context) {
	posts, err := h.Content.ListPosts(c.Request.Context(), true)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(posts))
}

func (h *handlers) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Content.CreatePost(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updatePost(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Content.UpdatePost(c.Request.Context(), id, req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deletePost(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Content.DeletePost(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Content.CreateProject(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProject(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Content.UpdateProject(c.Request.Context(), id, req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProject(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Content.DeleteProject(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listMessages(c *gin.Context) {
	msgs, err := h.Messages.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(msgs))
}

func (h *handlers) markMessageRead(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Messages.MarkRead(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) deleteMessage(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Messages.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listMedia(c *gin.Context) {
	items, err := h.Media.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *handlers) createUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	id, _ := identityFrom(c)
	up, err := h.Media.CreateUpload(c.Request.Context(), id.ID, req.Filename, req.ContentType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse{
		Media:     up.Media,
		UploadURL: up.UploadURL,
		ExpiresIn: int64(up.ExpiresIn.Seconds()),
	})
}

func (h *handlers) completeUpload(c *gin.Context) {
	id, ok := mediaID(c)
	if !ok {
		return
	}
	if err := h.Media.CompleteUpload(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) mediaURL(c *gin.Context) {
	id, ok := mediaID(c)
	if !ok {
		return
	}
	url, err := h.Media.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func mediaID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, common.ErrorNotFound)
		return "", false
	}
	return id.String(), true
}
