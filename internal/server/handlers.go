package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/shell"
)

const (
	shellKey   = "shell"
	imageField = "image"

	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

type errorResponse struct {
	Error string      `json:"error"`
	View  *shell.View `json:"view,omitempty"`
}

type sessionResponse struct {
	SessionID string     `json:"sessionId"`
	View      shell.View `json:"view"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) requireSession(c *gin.Context) {
	sh, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	c.Set(shellKey, sh)
	c.Next()
}

func shellFrom(c *gin.Context) *shell.Shell {
	return c.MustGet(shellKey).(*shell.Shell)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, sh := s.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{SessionID: id, View: sh.View()})
}

func (s *Server) handleGetSession(c *gin.Context) {
	c.JSON(http.StatusOK, shellFrom(c).View())
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpload(c *gin.Context) {
	sh := shellFrom(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)

	fh, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no image file provided"})
		return
	}
	if fh.Size > s.maxUpload {
		s.tooLarge(c)
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}
	if int64(len(data)) > s.maxUpload {
		s.tooLarge(c)
		return
	}

	mimeType := uploadMIMEType(fh.Header.Get("Content-Type"), data)

	view, err := sh.Upload(fh.Filename, mimeType, data)
	switch {
	case errors.Is(err, shell.ErrClosed):
		c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, imageedit.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), View: &view})
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "upload failed"})
	default:
		c.JSON(http.StatusOK, view)
	}
}

func (s *Server) handleSetPrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, shellFrom(c).SetPrompt(req.Prompt))
}

// handleEdit blocks until the edit resolves. Failures are part of the view,
// so the status is 200 unless another edit is still outstanding.
func (s *Server) handleEdit(c *gin.Context) {
	view, err := shellFrom(c).Submit(c.Request.Context())
	switch {
	case errors.Is(err, shell.ErrBusy):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), View: &view})
	case errors.Is(err, shell.ErrClosed):
		c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "edit failed"})
	default:
		c.JSON(http.StatusOK, view)
	}
}

func (s *Server) handlePreview(c *gin.Context) {
	view := shellFrom(c).View()
	img, ok := s.previews.Get(view.PreviewID)
	if !view.HasImage || !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no image uploaded"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func (s *Server) handleDownload(c *gin.Context) {
	dl, err := shellFrom(c).Download()
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, dl.MIMEType, dl.Data)
}

func (s *Server) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
		Error: fmt.Sprintf("image exceeds %d bytes", s.maxUpload),
	})
}

// uploadMIMEType trusts the part's declared type and sniffs when it is missing.
func uploadMIMEType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	return http.DetectContentType(data)
}
