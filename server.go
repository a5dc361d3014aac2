package main

import (
	"errors"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"file-manager/actions"
	"file-manager/config"
	"file-manager/journal"
	"file-manager/listing"
	"file-manager/platform"
	"file-manager/tasks"
)

type server struct {
	cfg        *config.Config
	dispatcher *actions.Dispatcher
	pool       *tasks.Pool
	hub        *hub
	journal    *journal.Journal
	registry   *prometheus.Registry
	logger     *zap.Logger
}

type IndexData struct {
	Cwd       string
	Elevated  bool
	WriteMode bool
	OS        string
}

// stateResponse is everything the page needs to redraw after navigation.
type stateResponse struct {
	Cwd       string           `json:"cwd"`
	Entries   []listing.Entry  `json:"entries"`
	Error     *actions.Failure `json:"error,omitempty"`
	Clipboard []string         `json:"clipboard"`
	History   []string         `json:"history"`
}

type navigateRequest struct {
	Path string `json:"path"`
}

type enterRequest struct {
	Name string `json:"name"`
}

type actionRequest struct {
	Names     []string `json:"names"`
	Dest      string   `json:"dest"`
	NewName   string   `json:"newName"`
	Confirmed bool     `json:"confirmed"`
}

// writeOps change the filesystem or run with privilege; they need write mode.
var writeOps = map[actions.Op]bool{
	actions.OpOpenElevated: true,
	actions.OpPaste:        true,
	actions.OpDelete:       true,
	actions.OpRename:       true,
	actions.OpCompress:     true,
	actions.OpExtract:      true,
}

// sameOrigin refuses requests made by pages from another origin. Requests
// without browser origin headers (curl, address bar) pass.
func sameOrigin(c *fiber.Ctx) error {
	switch c.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return fiber.NewError(fiber.StatusForbidden, "cross-origin request refused")
	}

	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		return c.Next()
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host != string(c.Request().Host()) {
		return fiber.NewError(fiber.StatusForbidden, "cross-origin request refused")
	}
	return c.Next()
}

func newApp(s *server) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  err.Error(),
			})
		},
	})

	app.Use(sameOrigin)

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/navigate", s.handleNavigate)
	api.Post("/back", s.handleBack)
	api.Post("/enter", s.handleEnter)
	api.Post("/action/:name", s.handleAction)
	api.Get("/search", s.handleSearch)
	api.Get("/tasks", s.handleTasks)
	api.Delete("/tasks/:id", s.handleCancelTask)

	// File preview - streams a file with its detected content type
	app.Get("/file", s.handleFileStream)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// WebSocket upgrade middleware
	app.Use("/files", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/files", websocket.New(s.handleWebSocket))

	return app
}

func (s *server) handleIndex(c *fiber.Ctx) error {
	tmpl, err := template.ParseFiles(filepath.Join(s.cfg.Server.Templates, "index.html.tmpl"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "template error: "+err.Error())
	}

	data := IndexData{
		Cwd:       s.dispatcher.Session().Cwd(),
		Elevated:  platform.IsElevated(),
		WriteMode: s.cfg.Browse.Write,
		OS:        runtime.GOOS,
	}

	c.Set("Content-Type", "text/html")
	return tmpl.Execute(c.Response().BodyWriter(), data)
}

func (s *server) state() stateResponse {
	sess := s.dispatcher.Session()
	entries, failure := s.dispatcher.List()
	return stateResponse{
		Cwd:       sess.Cwd(),
		Entries:   entries,
		Error:     failure,
		Clipboard: sess.Clipboard(),
		History:   sess.History(),
	}
}

func (s *server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.state())
}

func (s *server) handleNavigate(c *fiber.Ctx) error {
	var req navigateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return c.JSON(s.dispatcher.Goto(req.Path))
}

func (s *server) handleBack(c *fiber.Ctx) error {
	return c.JSON(s.dispatcher.Back())
}

func (s *server) handleEnter(c *fiber.Ctx) error {
	var req enterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return c.JSON(s.dispatcher.Enter(c.UserContext(), req.Name))
}

func (s *server) handleAction(c *fiber.Ctx) error {
	var req actionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	op := actions.Op(c.Params("name"))
	if writeOps[op] && !s.cfg.Browse.Write {
		return fiber.NewError(fiber.StatusForbidden, "write mode is disabled")
	}

	d := s.dispatcher
	ctx := c.UserContext()
	var res actions.Result
	switch op {
	case actions.OpOpen:
		res = d.Open(ctx, req.Names)
	case actions.OpOpenElevated:
		res = d.OpenElevated(ctx, req.Names)
	case actions.OpReveal:
		res = d.Reveal(ctx, req.Names)
	case actions.OpCopy:
		res = d.Copy(req.Names)
	case actions.OpCopyPath:
		res = d.CopyPath(req.Names)
	case actions.OpPaste:
		res = d.Paste()
	case actions.OpDelete:
		res = d.Delete(req.Names, req.Confirmed)
	case actions.OpRename:
		res = d.Rename(req.Names, req.NewName)
	case actions.OpCompress:
		res = d.Compress(req.Names, req.Dest)
	case actions.OpExtract:
		res = d.Extract(req.Names, req.Dest)
	default:
		return fiber.NewError(fiber.StatusNotFound, "unknown action: "+c.Params("name"))
	}

	if !res.OK() {
		s.logger.Warn("action had failures",
			zap.String("op", string(res.Op)),
			zap.Int("failures", len(res.Failures)))
	}
	return c.JSON(res)
}

func (s *server) handleSearch(c *fiber.Ctx) error {
	return c.JSON(s.dispatcher.Search(c.UserContext(), c.Query("q")))
}

func (s *server) handleTasks(c *fiber.Ctx) error {
	return c.JSON(s.pool.List())
}

func (s *server) handleCancelTask(c *fiber.Ctx) error {
	if err := s.pool.Cancel(c.Params("id")); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleFileStream serves one file for preview. Relative paths are taken
// from the current directory.
func (s *server) handleFileStream(c *fiber.Ctx) error {
	p := c.Query("path")
	if p == "" {
		return fiber.NewError(fiber.StatusBadRequest, "path parameter required")
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.dispatcher.Session().Cwd(), p)
	}

	info, err := os.Stat(p)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "file not found")
	}
	if info.IsDir() {
		return fiber.NewError(fiber.StatusBadRequest, "path is a directory, not a file")
	}

	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, "cannot read file")
	}

	f, err := os.Open(p)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, "cannot read file")
	}
	c.Set("Content-Type", mtype.String())
	c.Set("Content-Disposition", "inline; filename=\""+filepath.Base(p)+"\"")
	return c.SendStream(f, int(info.Size()))
}
