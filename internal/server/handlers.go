package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-formscreen/internal/logging"
	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/render"
)

const localeParam = "lang"

type handlers struct {
	opts *Options
}

// renderForm serves GET (blank form) and POST (apply the posted _action).
// A successful submit answers with the submitted values as JSON.
func (h *handlers) renderForm(c echo.Context) error {
	id := c.Param("id")
	req := orchestrator.FormRequest{
		FormID:       id,
		Renderer:     c.QueryParam("renderer"),
		Locale:       h.locale(c),
		ThemeName:    c.QueryParam("theme"),
		ThemeVariant: c.QueryParam("variant"),
		OnSubmit:     h.opts.submitFunc(id),
		RenderOptions: render.RenderOptions{
			Action: c.Request().URL.Path,
			Method: http.MethodPost,
		},
	}
	if c.Request().Method == http.MethodPost {
		values, err := c.FormParams()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form body").SetInternal(err)
		}
		req.Submission = values
	}

	ctx := logging.With(c.Request().Context(), "form", id)
	result, err := h.opts.Orchestrator.RenderForm(ctx, req)
	if err != nil {
		return err
	}
	if result.Submitted() {
		logging.FromContext(ctx).Info("form submitted", "fields", len(result.Result))
		return c.JSON(http.StatusOK, echo.Map{"form": id, "values": result.Result})
	}

	status := http.StatusOK
	if result.SubmitErr != nil {
		status = http.StatusUnprocessableEntity
	}
	return c.Blob(status, result.ContentType, result.Body)
}

func (h *handlers) renderScreen(c echo.Context) error {
	body, err := h.opts.Orchestrator.RenderScreen(c.Request().Context(), orchestrator.ScreenRequest{
		ScreenID: c.Param("id"),
		Locale:   h.locale(c),
		Query:    c.QueryParams(),
		BasePath: c.Request().URL.Path,
	})
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, body)
}

// locale prefers ?lang= over Accept-Language.
func (h *handlers) locale(c echo.Context) string {
	if lang := c.QueryParam(localeParam); lang != "" {
		if h.opts.Locales != nil {
			return h.opts.Locales.Match(lang)
		}
		return lang
	}
	if h.opts.Locales == nil {
		return ""
	}
	accept := c.Request().Header.Get("Accept-Language")
	if accept == "" {
		return ""
	}
	return h.opts.Locales.Match(accept)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, loader.ErrFormNotFound), errors.Is(err, loader.ErrScreenNotFound):
		return http.StatusNotFound
	case errors.Is(err, render.ErrRendererNotFound),
		errors.Is(err, render.ErrInvalidAction),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrItemIndex),
		errors.Is(err, form.ErrNotArray):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
