package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/auditlog"
	"github.com/commentguard/commentguard/automod/blocklist"
	"github.com/commentguard/commentguard/automod/config"
	"github.com/commentguard/commentguard/models"

	"github.com/labstack/echo/v4"
)

type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func errorName(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "InvalidRequest"
	case http.StatusUnauthorized:
		return "AuthRequired"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case http.StatusRequestEntityTooLarge:
		return "RequestTooLarge"
	}
	if code >= 500 {
		return "InternalError"
	}
	return "Error"
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("commentguard-http-internal-error", "err", err, "path", c.Path())
	}
	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, GenericError{Error: errorName(code), Message: msg}); err != nil {
		srv.logger.Error("failed to write error response", "err", err)
	}
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "commentguard"})
}

// Loads the current moderation options. Failures fall back to defaults, the same as the engine's own entry points.
func (srv *Server) loadConfig(c echo.Context) config.Config {
	cfg, err := srv.options.Load(c.Request().Context())
	if err != nil || cfg == nil {
		srv.logger.Error("failed to load moderation config, using defaults", "err", err)
		return config.Default()
	}
	return *cfg
}

type precheckRequest struct {
	Text   string `json:"text" form:"text"`
	Author string `json:"author" form:"author"`
	Mail   string `json:"mail" form:"mail"`
}

type PrecheckResponse struct {
	OK       bool                 `json:"ok"`
	Decision automod.Outcome      `json:"decision"`
	Reasons  []automod.ReasonCode `json:"reasons"`
}

// Evaluates a draft comment without storing it. Doesn't write audit records.
func (srv *Server) HandlePrecheck(c echo.Context) error {
	ctx := c.Request().Context()

	var req precheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cfg := srv.loadConfig(c)
	cfg.AuditLog = false
	comment := automod.Comment{
		Text:   strings.TrimSpace(req.Text),
		Author: strings.TrimSpace(req.Author),
		Mail:   strings.TrimSpace(req.Mail),
		IP:     c.RealIP(),
		Type:   automod.TypeComment,
	}
	d := srv.engine.Evaluate(ctx, &cfg, comment, callerFrom(c))
	precheckCount.WithLabelValues(string(d.Outcome)).Inc()

	return c.JSON(http.StatusOK, PrecheckResponse{
		OK:       d.Outcome != automod.OutcomeDeny,
		Decision: d.Outcome,
		Reasons:  d.Reasons,
	})
}

type PrecheckConfigResponse struct {
	Enabled       bool     `json:"enabled"`
	Words         []string `json:"words"`
	ContentAction string   `json:"contentAction"`
	AuthorAction  string   `json:"authorAction"`
}

// Configuration for client-side prechecking of comment forms.
func (srv *Server) HandlePrecheckConfig(c echo.Context) error {
	cfg := srv.loadConfig(c)
	out := PrecheckConfigResponse{
		Enabled:       cfg.FrontPrecheck,
		Words:         []string{},
		ContentAction: string(cfg.ContentChineseAction),
		AuthorAction:  string(cfg.AuthorChineseAction),
	}
	if cfg.FrontPrecheck {
		out.Words = cfg.SensitiveWordList()
	}
	return c.JSON(http.StatusOK, out)
}

type createCommentRequest struct {
	ContentID uint   `json:"cid" form:"cid"`
	Text      string `json:"text" form:"text"`
	Author    string `json:"author" form:"author"`
	Mail      string `json:"mail" form:"mail"`
	URL       string `json:"url" form:"url"`
	Parent    uint   `json:"parent" form:"parent"`
}

type CommentResponse struct {
	ID       uint                 `json:"id"`
	Status   string               `json:"status"`
	Decision automod.Outcome      `json:"decision"`
	Reasons  []automod.ReasonCode `json:"reasons"`
}

func rejected(c echo.Context) error {
	return c.JSON(http.StatusForbidden, GenericError{
		Error:   "CommentRejected",
		Message: "comment rejected",
	})
}

// Host comment flow: the pre-save gate, then persistence, then the post-save re-check.
func (srv *Server) HandleCreateComment(c echo.Context) error {
	ctx := c.Request().Context()

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Text = strings.TrimSpace(req.Text)
	req.Author = strings.TrimSpace(req.Author)
	req.Mail = strings.TrimSpace(req.Mail)
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "comment text is required")
	}
	content, err := srv.comments.GetContent(ctx, req.ContentID)
	if err != nil {
		return fmt.Errorf("looking up content: %w", err)
	}
	if content == nil {
		return echo.NewHTTPError(http.StatusNotFound, "content not found")
	}

	caller := callerFrom(c)
	comment, d, err := srv.engine.PreSave(ctx, automod.Comment{
		Text:   req.Text,
		Author: req.Author,
		Mail:   req.Mail,
		IP:     c.RealIP(),
		Type:   automod.TypeComment,
	}, caller)
	if errors.Is(err, automod.ErrCommentDenied) {
		commentCount.WithLabelValues("presave", string(d.Outcome)).Inc()
		return rejected(c)
	} else if err != nil {
		return err
	}

	row := models.Comment{
		ContentID: content.ID,
		Author:    comment.Author,
		Mail:      comment.Mail,
		URL:       strings.TrimSpace(req.URL),
		IP:        comment.IP,
		Agent:     c.Request().UserAgent(),
		Text:      comment.Text,
		Type:      comment.Type,
		Status:    comment.Status,
		Parent:    req.Parent,
	}
	if err := srv.comments.Insert(ctx, &row); err != nil {
		return fmt.Errorf("storing comment: %w", err)
	}
	commentCount.WithLabelValues("presave", string(d.Outcome)).Inc()

	// the pre-save gate already evaluated this comment; the post-save re-check is only for comments stored without it

	code := http.StatusCreated
	if comment.Status == automod.StatusWaiting {
		code = http.StatusAccepted
	}
	return c.JSON(code, CommentResponse{
		ID:       row.ID,
		Status:   comment.Status,
		Decision: d.Outcome,
		Reasons:  d.Reasons,
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid comment id")
	}
	return uint(id), nil
}

// Re-runs the checks over an already stored comment, applying the outcome to it.
func (srv *Server) HandleRecheckComment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	row, err := srv.comments.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up comment: %w", err)
	}
	if row == nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}

	comment := automod.Comment{
		ID:     row.ID,
		Text:   row.Text,
		Author: row.Author,
		Mail:   row.Mail,
		IP:     row.IP,
		Type:   row.Type,
		Status: row.Status,
	}
	d, ran := srv.engine.PostSaveRecheck(ctx, comment, callerFrom(c))
	status := row.Status
	if ran {
		commentCount.WithLabelValues("recheck", string(d.Outcome)).Inc()
		switch d.Outcome {
		case automod.OutcomeDeny:
			status = "deleted"
		case automod.OutcomeHold:
			status = automod.StatusWaiting
		}
	}
	return c.JSON(http.StatusOK, CommentResponse{
		ID:       row.ID,
		Status:   status,
		Decision: d.Outcome,
		Reasons:  d.Reasons,
	})
}

type BlacklistResponse struct {
	*blocklist.BlockResult
	Message string `json:"message"`
}

func (srv *Server) HandleBlacklist(c echo.Context) error {
	var req blocklist.BlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := srv.blocklist.Block(c.Request().Context(), req)
	if errors.Is(err, blocklist.ErrNoTarget) {
		return echo.NewHTTPError(http.StatusBadRequest, "an IP or email is required")
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BlacklistResponse{BlockResult: res, Message: res.Summary()})
}

func auditError(err error) error {
	switch {
	case errors.Is(err, auditlog.ErrInvalidFileName):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid log file name")
	case errors.Is(err, auditlog.ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "log file not found")
	}
	return err
}

func (srv *Server) HandleListLogs(c echo.Context) error {
	files, err := srv.audit.ListFiles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"files": files})
}

func (srv *Server) HandleViewLog(c echo.Context) error {
	page := 1
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page number")
		}
		page = n
	}
	out, err := srv.audit.View(c.Request().Context(), c.Param("file"), page)
	if err != nil {
		return auditError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (srv *Server) HandleDeleteLog(c echo.Context) error {
	if err := srv.audit.Delete(c.Request().Context(), c.Param("file")); err != nil {
		return auditError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": 1})
}

type deleteLogsRequest struct {
	Files []string `json:"files"`
}

func (srv *Server) HandleDeleteLogs(c echo.Context) error {
	var req deleteLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files selected")
	}
	deleted, failed := srv.audit.DeleteMany(c.Request().Context(), req.Files)
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted, "failed": failed})
}

type purgeLogsRequest struct {
	// YYYY-MM-DD; files dated strictly before this are removed. Empty removes all.
	Before string `json:"before" form:"before"`
}

func (srv *Server) HandlePurgeLogs(c echo.Context) error {
	var req purgeLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	var before time.Time
	if req.Before != "" {
		t, err := time.Parse(time.DateOnly, req.Before)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
		before = t
	}
	deleted, failed, err := srv.audit.Purge(c.Request().Context(), before)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted, "failed": failed})
}

// Drops the cached classifier access token for the configured credentials.
func (srv *Server) HandleResetToken(c echo.Context) error {
	cfg := srv.loadConfig(c)
	if err := srv.tokens.Purge(c.Request().Context(), cfg.Credentials().Key()); err != nil {
		return fmt.Errorf("purging classifier token: %w", err)
	}
	srv.logger.Info("purged cached classifier token", "user", callerFrom(c).UserID)
	return c.NoContent(http.StatusNoContent)
}

func (srv *Server) HandleGetOptions(c echo.Context) error {
	cfg := srv.loadConfig(c)
	return c.JSON(http.StatusOK, cfg.Redacted())
}

type setOptionRequest struct {
	Value string `json:"value" form:"value"`
}

func (srv *Server) HandleSetOption(c echo.Context) error {
	name := c.Param("name")
	if !config.IsOptionName(name) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown option: %s", name))
	}
	var req setOptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := srv.options.SetOption(c.Request().Context(), name, req.Value); err != nil {
		return fmt.Errorf("saving option: %w", err)
	}
	srv.logger.Info("updated moderation option", "option", name, "user", callerFrom(c).UserID)
	return c.NoContent(http.StatusNoContent)
}
