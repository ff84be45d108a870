package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paper-review/internal/reports"
	"paper-review/internal/shared/server/middleware"
	"paper-review/internal/shared/server/respond"
	"paper-review/internal/shared/util"
	"paper-review/internal/uploads"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/*
var StaticFS embed.FS

// Handler serves the upload page and the report view.
type Handler struct {
	Sessions       *Sessions
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(sessions *Sessions, maxUploadBytes int64) *Handler {
	return &Handler{Sessions: sessions, MaxUploadBytes: maxUploadBytes}
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"markdown": RenderMarkdown,
		"tabURL":   TabURL,
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

// RegisterRoutes attaches the page routes. uploadGuard runs before the upload
// handler (rate limiting).
func (h *Handler) RegisterRoutes(r gin.IRoutes, uploadGuard ...gin.HandlerFunc) {
	r.GET("/", h.index)
	r.POST("/select", h.selectFile)
	r.POST("/upload", append(uploadGuard, h.upload)...)
	r.GET("/progress", h.progress)
	r.POST("/reset", h.reset)
}

type pageData struct {
	State       uploads.State
	View        *reports.View
	Notice      string
	MaxUploadMB int64
}

func (h *Handler) index(c *gin.Context) {
	id := middleware.SessionIDFromContext(c)
	st := h.Sessions.Controller(id).State()
	data := pageData{
		State:       st,
		Notice:      h.Sessions.TakeNotice(id),
		MaxUploadMB: h.MaxUploadBytes >> 20,
	}
	if st.Result != nil {
		view := reports.BuildView(*st.Result, c.Query("tab"))
		data.View = &view
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "page", data)
}

func (h *Handler) selectFile(c *gin.Context) {
	id := middleware.SessionIDFromContext(c)
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+(1<<20))
	}

	header, err := c.FormFile(uploads.FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, id, http.StatusRequestEntityTooLarge, "file_too_large", "The selected file is too large.")
			return
		}
		h.fail(c, id, http.StatusBadRequest, "validation_error", "Choose a file to upload.")
		return
	}
	if h.MaxUploadBytes > 0 && header.Size > h.MaxUploadBytes {
		h.fail(c, id, http.StatusRequestEntityTooLarge, "file_too_large", "The selected file is too large.")
		return
	}
	name, err := util.SanitizeFileName(header.Filename)
	if err != nil {
		h.fail(c, id, http.StatusBadRequest, "validation_error", "The file name is not valid.")
		return
	}

	f, err := header.Open()
	if err != nil {
		h.fail(c, id, http.StatusBadRequest, "validation_error", "The file could not be read.")
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		h.fail(c, id, http.StatusBadRequest, "validation_error", "The file could not be read.")
		return
	}

	ctrl := h.Sessions.Controller(id)
	if err := ctrl.Select(c.Request.Context(), uploads.File{Name: name, Data: data}); err != nil {
		h.failErr(c, id, err)
		return
	}
	h.done(c, ctrl.State())
}

// upload blocks until the analysis service answers. The upstream call is
// detached from the request so a closed tab does not lose the result.
func (h *Handler) upload(c *gin.Context) {
	id := middleware.SessionIDFromContext(c)
	ctrl := h.Sessions.Controller(id)

	ctx := context.WithoutCancel(c.Request.Context())
	_, err := ctrl.Upload(ctx)
	st := ctrl.State()
	c.Set("uploadStatus", string(st.Status))
	if err != nil {
		h.failErr(c, id, err)
		return
	}
	h.done(c, st)
}

func (h *Handler) progress(c *gin.Context) {
	st := h.Sessions.Controller(middleware.SessionIDFromContext(c)).State()
	c.Header("Cache-Control", "no-store")
	respond.OK(c, gin.H{
		"status":          st.Status,
		"progressPercent": st.ProgressPercent,
		"fileName":        st.FileName,
		"canUpload":       st.CanUpload(),
		"hasResult":       st.Result != nil,
		"error":           st.ErrorMessage,
	})
}

func (h *Handler) reset(c *gin.Context) {
	id := middleware.SessionIDFromContext(c)
	ctrl := h.Sessions.Controller(id)
	if err := ctrl.Reset(); err != nil {
		h.failErr(c, id, err)
		return
	}
	h.done(c, ctrl.State())
}

func (h *Handler) done(c *gin.Context, st uploads.State) {
	if respond.WantsJSON(c) {
		respond.OK(c, gin.H{
			"status":          st.Status,
			"progressPercent": st.ProgressPercent,
			"fileName":        st.FileName,
			"hasResult":       st.Result != nil,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// failErr maps controller errors. Upload failures already sit in the
// controller state and show in the banner; others become a one-shot notice.
func (h *Handler) failErr(c *gin.Context, id string, err error) {
	var upErr *uploads.UploadError
	switch {
	case errors.Is(err, uploads.ErrUploadInProgress):
		h.fail(c, id, http.StatusConflict, "upload_in_progress", uploads.UserMessage(err))
	case errors.Is(err, uploads.ErrNoFileSelected):
		h.fail(c, id, http.StatusBadRequest, "no_file_selected", uploads.UserMessage(err))
	case errors.As(err, &upErr):
		if respond.WantsJSON(c) {
			respond.Error(c, http.StatusBadGateway, "upstream_error", upErr.Message, gin.H{"upstreamStatus": upErr.StatusCode})
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	default:
		h.fail(c, id, http.StatusInternalServerError, "internal_error", uploads.DefaultErrorMessage)
	}
}

func (h *Handler) fail(c *gin.Context, id string, status int, code, message string) {
	if respond.WantsJSON(c) {
		respond.Error(c, status, code, message, nil)
		return
	}
	h.Sessions.SetNotice(id, message)
	c.Redirect(http.StatusSeeOther, "/")
}

// TabURL builds the link for a tab on the report page.
func TabURL(key string) string {
	if key == "" || key == reports.SummaryTab {
		return "/"
	}
	return "/?tab=" + strings.TrimSpace(key)
}
