package handler

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mathieu-neron/vidsource/internal/middleware"
	"github.com/mathieu-neron/vidsource/internal/page"
)

// PageOptions configure how fetches issued by requests are executed.
type PageOptions struct {
	// BaseCtx outlives individual requests; fetches derive from it.
	BaseCtx context.Context
	// FetchTimeout bounds each background fetch. Zero means no extra bound.
	FetchTimeout time.Duration
	// Go runs a fetch. Defaults to starting a goroutine.
	Go func(fn func())
	// SessionMaxAge is the cookie lifetime.
	SessionMaxAge time.Duration
}

type PageHandler struct {
	sessions *page.Sessions
	lister   page.SourceLister
	opts     PageOptions
	tpl      *template.Template
}

func NewPageHandler(sessions *page.Sessions, lister page.SourceLister, opts PageOptions) *PageHandler {
	if opts.BaseCtx == nil {
		opts.BaseCtx = context.Background()
	}
	if opts.Go == nil {
		opts.Go = func(fn func()) { go fn() }
	}
	if opts.SessionMaxAge <= 0 {
		opts.SessionMaxAge = 30 * time.Minute
	}
	return &PageHandler{
		sessions: sessions,
		lister:   lister,
		opts:     opts,
		tpl:      template.Must(template.New("page").Funcs(template.FuncMap{"placeholders": placeholders}).Parse(pageTpl)),
	}
}

type selectRequest struct {
	Key string `json:"key" form:"key"`
}

// Show handles GET /: renders the session's page.
func (h *PageHandler) Show(c fiber.Ctx) error {
	p := h.session(c)
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return h.tpl.Execute(c, p.View())
}

// SelectSourceForm handles POST /select/source.
func (h *PageHandler) SelectSourceForm(c fiber.Ctx) error {
	key, errMsg := middleware.ValidateSourceKey(formKey(c))
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).SendString(errMsg)
	}
	if err := h.selectSource(c, key); errors.Is(err, page.ErrUnknownSource) {
		return c.Status(fiber.StatusNotFound).SendString("unknown source")
	} else if err != nil {
		return err
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/")
}

// SelectCategoryForm handles POST /select/category.
func (h *PageHandler) SelectCategoryForm(c fiber.Ctx) error {
	key, errMsg := middleware.ValidateCategoryKey(formKey(c))
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).SendString(errMsg)
	}
	if err := h.selectCategory(c, key); errors.Is(err, page.ErrUnknownCategory) {
		return c.Status(fiber.StatusNotFound).SendString("unknown category")
	} else if err != nil {
		return err
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/")
}

// View handles GET /api/page.
func (h *PageHandler) View(c fiber.Ctx) error {
	p := h.session(c)
	return c.JSON(p.View())
}

// SelectSource handles POST /api/page/source.
func (h *PageHandler) SelectSource(c fiber.Ctx) error {
	var req selectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	key, errMsg := middleware.ValidateSourceKey(req.Key)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if err := h.selectSource(c, key); errors.Is(err, page.ErrUnknownSource) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "UNKNOWN_SOURCE", "No source with that key")
	} else if err != nil {
		return err
	}
	return h.View(c)
}

// SelectCategory handles POST /api/page/category.
func (h *PageHandler) SelectCategory(c fiber.Ctx) error {
	var req selectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	key, errMsg := middleware.ValidateCategoryKey(req.Key)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if err := h.selectCategory(c, key); errors.Is(err, page.ErrUnknownCategory) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "UNKNOWN_CATEGORY", "No category with that key")
	} else if err != nil {
		return err
	}
	return h.View(c)
}

func (h *PageHandler) selectSource(c fiber.Ctx, key string) error {
	p := h.session(c)
	f, err := p.SelectSource(key)
	if err != nil {
		return err
	}
	h.start(p, f)
	return nil
}

func (h *PageHandler) selectCategory(c fiber.Ctx, key string) error {
	p := h.session(c)
	f, err := p.SelectCategory(key)
	if err != nil {
		return err
	}
	h.start(p, f)
	return nil
}

// session returns the caller's page, issuing a cookie and loading the source
// list until it has been loaded once.
func (h *PageHandler) session(c fiber.Ctx) *page.Page {
	// Cookie values alias the request buffer; the ID outlives the request.
	id := strings.Clone(c.Cookies(middleware.SessionCookie))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.opts.SessionMaxAge.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	p, created := h.sessions.Get(id)
	if created || p.NeedsInit() {
		h.start(p, p.Initialize(c.Context(), h.lister))
	}
	return p
}

func (h *PageHandler) start(p *page.Page, f *page.Fetch) {
	if f == nil {
		return
	}
	h.opts.Go(func() {
		ctx := h.opts.BaseCtx
		if h.opts.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.opts.FetchTimeout)
			defer cancel()
		}
		p.Run(ctx, f)
	})
}

// formKey copies the form value out of the request buffer, since the key is
// kept in session state after the request ends.
func formKey(c fiber.Ctx) string {
	return strings.Clone(c.FormValue("key"))
}

// placeholders lets the template range over a fixed count.
func placeholders(n int) []struct{} {
	return make([]struct{}, n)
}
