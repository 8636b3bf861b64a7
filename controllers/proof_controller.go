package controllers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"proofok-api/models"
	"proofok-api/services"
)

// Version is reported by the banner and /healthz.
const Version = "proofok-go-v1"

// ProofHandler serves the upload, review and respond pages.
type ProofHandler struct {
	submissions *services.SubmissionService
	decisions   *services.DecisionService
	baseURL     string
	maxUploadMB int64
}

func NewProofHandler(submissions *services.SubmissionService, decisions *services.DecisionService, baseURL string, maxUploadMB int64) *ProofHandler {
	return &ProofHandler{
		submissions: submissions,
		decisions:   decisions,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxUploadMB: maxUploadMB,
	}
}

func (h *ProofHandler) page(title string, data gin.H) gin.H {
	data["Title"] = title
	data["Version"] = Version
	return data
}

func (h *ProofHandler) Index(c *gin.Context) {
	body := fmt.Sprintf("ProofOK is running (%s). See <a href='/healthz'>/healthz</a>, "+
		"<a href='/routes'>/routes</a>, or <a href='/upload'>/upload</a> to test.", Version)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func (h *ProofHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListRoutes reports the routes registered on engine.
func ListRoutes(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := make([]string, 0)
		for _, r := range engine.Routes() {
			routes = append(routes, r.Method+" "+r.Path)
		}
		sort.Strings(routes)
		c.JSON(http.StatusOK, gin.H{"routes": routes})
	}
}

func (h *ProofHandler) UploadForm(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.page("Upload a proof", gin.H{"MaxMB": h.maxUploadMB}))
}

// UploadPost handles the manual upload form and renders the share link.
func (h *ProofHandler) UploadPost(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil || !isPDFName(fileHeader.Filename) {
		h.renderUploaded(c, http.StatusOK, gin.H{"OK": false, "Message": "Please choose a .pdf file."})
		return
	}

	rec, err := h.storeUpload(c, fileHeader, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedDocument):
			h.renderUploaded(c, http.StatusOK, gin.H{"OK": false, "Message": "Please choose a .pdf file."})
		case errors.Is(err, services.ErrDocumentTooLarge):
			h.renderUploaded(c, http.StatusRequestEntityTooLarge, gin.H{"OK": false, "Message": fmt.Sprintf("The file is larger than %d MB.", h.maxUploadMB)})
		default:
			log.Printf("Error storing upload %q: %v", fileHeader.Filename, err)
			h.renderError(c, http.StatusInternalServerError, "Upload failed", "The file could not be stored. Please try again.")
		}
		return
	}

	h.renderUploaded(c, http.StatusOK, gin.H{
		"OK":           true,
		"URL":          h.proofLink(c, rec.ID),
		"Token":        rec.ID,
		"OriginalName": rec.OriginalName,
	})
}

// APIUpload is the JSON upload endpoint used by watchers and scripts.
func (h *ProofHandler) APIUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil || !isPDFName(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a .pdf file"})
		return
	}

	name := strings.TrimSpace(c.PostForm("original_name"))
	if name == "" {
		name = fileHeader.Filename
	}

	rec, err := h.storeUpload(c, fileHeader, name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedDocument):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a .pdf file"})
		case errors.Is(err, services.ErrDocumentTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds %d MB", h.maxUploadMB)})
		default:
			log.Printf("Error storing upload %q: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"token": rec.ID,
		"url":   h.proofLink(c, rec.ID),
	})
}

// ReviewPage renders the document, its history and the decision form.
func (h *ProofHandler) ReviewPage(c *gin.Context) {
	id := c.Param("token")
	rec, err := h.submissions.Lookup(c.Request.Context(), id)
	if err != nil {
		h.lookupFailed(c, id, err)
		return
	}

	c.HTML(http.StatusOK, "proof.html", h.page(rec.OriginalName, gin.H{
		"Token":        rec.ID,
		"OriginalName": rec.OriginalName,
		"Status":       string(rec.Status()),
		"Responses":    rec.Responses,
		"DocumentURL":  "/p/" + rec.ID + "/" + url.PathEscape(rec.StoredName),
	}))
}

// APIRecord returns the record as JSON, status included.
func (h *ProofHandler) APIRecord(c *gin.Context) {
	id := c.Param("token")
	rec, err := h.submissions.Lookup(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proof not found"})
			return
		}
		log.Printf("Error loading record %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load proof"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Respond records a reviewer decision submitted from the review page.
func (h *ProofHandler) Respond(c *gin.Context) {
	id := c.Param("token")
	out, err := h.decisions.SubmitDecision(c.Request.Context(), services.DecisionInput{
		SubmissionID:  id,
		Decision:      c.PostForm("decision"),
		Comment:       c.PostForm("comment"),
		ReviewerName:  c.PostForm("viewer_name"),
		ReviewerEmail: c.PostForm("viewer_email"),
		OriginAddress: originAddress(c),
		ReviewLink:    h.proofLink(c, id),
	})

	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecordNotFound):
			h.renderResult(c, http.StatusNotFound, gin.H{"OK": false, "Message": "This proof link was not found."})
		case errors.Is(err, services.ErrInvalidDecision):
			h.renderResult(c, http.StatusOK, h.withRecordName(c, id, gin.H{"OK": false, "Message": "Invalid decision.", "Token": id}))
		case errors.Is(err, services.ErrCommentRequired):
			h.renderResult(c, http.StatusOK, h.withRecordName(c, id, gin.H{"OK": false, "Message": "Please add a comment when rejecting.", "Token": id}))
		default:
			log.Printf("Error recording decision for %s: %v", id, err)
			h.renderError(c, http.StatusInternalServerError, "Decision not recorded", "We could not record your decision. Please try again.")
		}
		return
	}

	if out.Warning != "" {
		log.Printf("Decision %s recorded for %s with warning: %s", out.Event.Decision, id, out.Warning)
	}
	h.renderResult(c, http.StatusOK, gin.H{
		"OK":           true,
		"Message":      "Thank you. Your decision was recorded.",
		"Warning":      out.Warning,
		"Token":        id,
		"OriginalName": out.Record.OriginalName,
	})
}

// ServeDocument streams a stored document inline.
func (h *ProofHandler) ServeDocument(c *gin.Context) {
	filename := c.Param("filename")
	path, err := h.submissions.DocumentPath(c.Param("token"), filename)
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Not found", "The requested document does not exist.")
		return
	}
	c.Header("Content-Type", services.DocumentContentType(path))
	c.File(path)
}

// NotFound renders the 404 page for unmatched routes.
func (h *ProofHandler) NotFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, "Not found", "The page you requested does not exist.")
}

func (h *ProofHandler) storeUpload(c *gin.Context, fileHeader *multipart.FileHeader, name string) (*models.Record, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return h.submissions.CreateSubmission(c.Request.Context(), name, f)
}

func (h *ProofHandler) lookupFailed(c *gin.Context, id string, err error) {
	if errors.Is(err, services.ErrRecordNotFound) {
		h.renderError(c, http.StatusNotFound, "Proof not found", "This proof link was not found.")
		return
	}
	log.Printf("Error loading record %s: %v", id, err)
	h.renderError(c, http.StatusInternalServerError, "Something went wrong", "The proof could not be loaded. Please try again.")
}

func (h *ProofHandler) withRecordName(c *gin.Context, id string, data gin.H) gin.H {
	if rec, err := h.submissions.Lookup(c.Request.Context(), id); err == nil {
		data["OriginalName"] = rec.OriginalName
	}
	return data
}

func (h *ProofHandler) renderUploaded(c *gin.Context, status int, data gin.H) {
	c.HTML(status, "uploaded.html", h.page("Upload", data))
}

func (h *ProofHandler) renderResult(c *gin.Context, status int, data gin.H) {
	c.HTML(status, "result.html", h.page("Decision", data))
}

func (h *ProofHandler) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", h.page(title, gin.H{"Message": message}))
}

// proofLink builds the share URL from BASE_URL or the inbound request.
func (h *ProofHandler) proofLink(c *gin.Context, id string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/proof/" + id
}

func originAddress(c *gin.Context) string {
	if fwd := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); fwd != "" {
		return fwd
	}
	return c.RemoteIP()
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf")
}
