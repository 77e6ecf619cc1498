package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/app/auth"
	"yatube/app/errs"
	"yatube/app/middleware"
	"yatube/app/views"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LoginPath is where anonymous users are sent.
const LoginPath = "/auth/login/"

// base holds what every controller needs to answer a request.
type base struct {
	views *views.Renderer
	log   *zap.Logger
}

type notFoundPage struct {
	views.Base
	Path string
}

func (b *base) page(r *http.Request, title string) views.Base {
	return views.Base{
		Viewer:    auth.GetUser(r.Context()),
		Title:     title,
		CSRFField: csrf.TemplateField(r),
	}
}

func (b *base) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := b.views.Render(w, status, name, data); err != nil {
		b.log.Error("render failed", zap.String("page", name), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "404", notFoundPage{b.page(r, "Page not found"), r.URL.Path})
}

// fail maps the error taxonomy to a response. Forbidden and
// validation errors are handled by the callers because their
// responses depend on the page.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.NotFound):
		b.notFound(w, r)
	case errors.Is(err, errs.Unauthorized):
		http.Redirect(w, r, middleware.LoginURL(LoginPath, r.URL.RequestURI()), http.StatusFound)
	case errors.Is(err, errs.Forbidden):
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		b.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// pathID reads the numeric {id} route variable. The routes only match
// digits, so a failure means the ID overflowed.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errs.NotFound
	}
	return id, nil
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
