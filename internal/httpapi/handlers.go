package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"call-dashboard/internal/derive"
	"call-dashboard/internal/export"
	"call-dashboard/internal/form"
	"call-dashboard/internal/notify"
	"call-dashboard/internal/records"
	"call-dashboard/internal/session"
	"call-dashboard/internal/upstream"
	"call-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxRecordingBytes caps uploaded recording attachments.
const maxRecordingBytes = 25 << 20

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal modules, return JSON.
type Handlers struct {
	Gate     *session.Gate
	Store    *records.Store
	Upstream *upstream.Client
	Poller   *notify.Poller
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username, email, password required"})
		return
	}
	if len(req.Password) < 6 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}
	if err := h.Upstream.Signup(c.Request.Context(), upstream.SignupRequest(req)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token       string `json:"token,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Elevated    bool   `json:"elevated"`
	DarkMode    bool   `json:"dark_mode"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	s, err := h.Gate.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrBadCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		Token:       s.Token,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Elevated:    s.Elevated,
		DarkMode:    s.DarkMode,
	})
}

func (h Handlers) Logout(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	if err := h.Gate.Logout(c.Request.Context(), s.Token); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h Handlers) Me(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, sessionResponse{
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Elevated:    s.Elevated,
		DarkMode:    s.DarkMode,
	})
}

type preferencesRequest struct {
	DarkMode bool `json:"dark_mode"`
}

func (h Handlers) SetPreferences(c *gin.Context) {
	s, _ := session.FromContext(c.Request.Context())
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := h.Gate.SetDarkMode(c.Request.Context(), s.Token, req.DarkMode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark_mode": updated.DarkMode})
}

// --- Records ---

// ListRecords refreshes the collection and serves the filtered, sorted,
// paginated view. When the refresh fails the last-known-good snapshot is
// served instead of an empty table; the response marks itself stale.
func (h Handlers) ListRecords(c *gin.Context) {
	stale := false
	if _, err := h.Store.FetchAll(h.apiCtx(c)); err != nil {
		if upstream.IsAuth(err) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Warn("record refresh failed, serving stale snapshot", "err", err)
		stale = true
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	q := derive.Query{
		Search: c.Query("search"),
		Status: records.Status(c.Query("status")),
		Sort: derive.SortState{
			Key:  c.Query("sort"),
			Desc: c.Query("desc") == "true",
		},
		Page: page,
	}
	view := derive.ListView(h.Store.Snapshot(), q)
	c.JSON(http.StatusOK, gin.H{
		"records":        view.Records,
		"page":           view.Page,
		"total_pages":    view.TotalPages,
		"filtered_count": view.Filtered,
		"stale":          stale,
	})
}

func (h Handlers) CreateRecord(c *gin.Context) {
	draft, att, err := h.bindRecord(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := form.NewController(h.Store)
	ctrl.SetDraft(draft)
	ctrl.Attach(att)
	rec, err := ctrl.Submit(h.apiCtx(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h Handlers) UpdateRecord(c *gin.Context) {
	id := c.Param("id")
	existing, ok := h.findRecord(id)
	if !ok {
		// The snapshot may be cold (fresh process, no list yet); the server
		// decides whether the record exists, not the local copy.
		if _, err := h.Store.FetchAll(h.apiCtx(c)); err != nil {
			h.fail(c, err)
			return
		}
		if existing, ok = h.findRecord(id); !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
	}
	draft, att, err := h.bindRecord(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := form.NewController(h.Store)
	if err := ctrl.BeginEdit(existing); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctrl.SetDraft(draft)
	ctrl.Attach(att)
	rec, err := ctrl.Submit(h.apiCtx(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) DeleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.Delete(h.apiCtx(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h Handlers) ExportCSV(c *gin.Context) {
	if _, err := h.Store.FetchAll(h.apiCtx(c)); err != nil {
		if upstream.IsAuth(err) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Warn("record refresh failed, exporting stale snapshot", "err", err)
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	if err := export.WriteCSV(c.Writer, h.Store.Snapshot()); err != nil {
		logger.FromGin(c).Error("csv export failed", "err", err)
	}
}

// --- Projections ---

func (h Handlers) Summary(c *gin.Context) {
	if _, err := h.Store.FetchAll(h.apiCtx(c)); err != nil {
		if upstream.IsAuth(err) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Warn("record refresh failed, summarizing stale snapshot", "err", err)
	}
	c.JSON(http.StatusOK, derive.Metrics(h.Store.Snapshot()))
}

func (h Handlers) Charts(c *gin.Context) {
	if _, err := h.Store.FetchAll(h.apiCtx(c)); err != nil {
		if upstream.IsAuth(err) {
			h.forceLogout(c)
			return
		}
		logger.FromGin(c).Warn("record refresh failed, charting stale snapshot", "err", err)
	}
	c.JSON(http.StatusOK, derive.TimeBuckets(h.Store.Snapshot(), logger.FromGin(c)))
}

// --- Admin ---

func (h Handlers) ActiveUsers(c *gin.Context) {
	users, err := h.Upstream.ActiveUsers(h.apiCtx(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h Handlers) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.Poller.Snapshot()})
}

// --- Helpers ---

// apiCtx attaches the session's upstream bearer token so remote calls act on
// behalf of the logged-in user.
func (h Handlers) apiCtx(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if s, ok := session.FromContext(ctx); ok {
		return upstream.WithToken(ctx, s.UpstreamToken)
	}
	return ctx
}

func (h Handlers) findRecord(id string) (records.CallRecord, bool) {
	for _, r := range h.Store.Snapshot() {
		if r.ID == id {
			return r, true
		}
	}
	return records.CallRecord{}, false
}

// bindRecord reads a record payload as JSON, or as multipart/form-data when
// the client uploads a recording alongside the fields.
func (h Handlers) bindRecord(c *gin.Context) (records.CallRecord, *records.Attachment, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var draft records.CallRecord
		if err := c.ShouldBindJSON(&draft); err != nil {
			return records.CallRecord{}, nil, errors.New("invalid json")
		}
		return draft, nil, nil
	}

	draft := records.CallRecord{
		CustomerName: c.PostForm("customer_name"),
		CallerName:   c.PostForm("caller_name"),
		Number:       c.PostForm("number"),
		Email:        c.PostForm("email"),
		Address:      c.PostForm("address"),
		Time:         c.PostForm("time"),
		Date:         c.PostForm("date"),
		Duration:     c.PostForm("duration"),
		Status:       records.Status(c.PostForm("status")),
	}

	fh, err := c.FormFile("recording")
	if err != nil {
		// Attachment is optional even on multipart submissions.
		return draft, nil, nil
	}
	if fh.Size > maxRecordingBytes {
		return records.CallRecord{}, nil, errors.New("recording exceeds size limit")
	}
	f, err := fh.Open()
	if err != nil {
		return records.CallRecord{}, nil, errors.New("recording could not be read")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxRecordingBytes))
	if err != nil {
		return records.CallRecord{}, nil, errors.New("recording could not be read")
	}
	return draft, &records.Attachment{Filename: fh.Filename, Data: data}, nil
}

// forceLogout revokes the current session after the remote API answered 401.
func (h Handlers) forceLogout(c *gin.Context) {
	if s, ok := session.FromContext(c.Request.Context()); ok {
		h.Gate.Revoke(c.Request.Context(), s.Token)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired, log in again"})
}

// fail maps domain and upstream errors onto HTTP responses.
func (h Handlers) fail(c *gin.Context, err error) {
	var fieldErr *form.FieldError
	if errors.As(err, &fieldErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error(), "field": fieldErr.Field})
		return
	}

	if ae, ok := upstream.AsAPIError(err); ok {
		switch ae.Kind {
		case upstream.KindAuth:
			h.forceLogout(c)
		case upstream.KindForbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		case upstream.KindNotFound:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
		case upstream.KindValidation:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ae.Message})
		case upstream.KindNetwork:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "remote API not reachable"})
		default:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "remote API failed"})
		}
		return
	}

	if errors.Is(err, session.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}

	logger.FromGin(c).Error("unhandled error", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

