package controllers

import (
	"net/http"

	"yatube/app/views"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// CoreController renders the error pages
type CoreController struct {
	base
}

// NewCoreController creates a new CoreController
func NewCoreController(v *views.Renderer, log *zap.Logger) *CoreController {
	return &CoreController{base: base{views: v, log: log}}
}

// NotFound renders the 404 page
func (cc *CoreController) NotFound(w http.ResponseWriter, r *http.Request) {
	cc.notFound(w, r)
}

// CSRFFailure renders the 403 page for forms without a valid token
func (cc *CoreController) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	cc.log.Warn("csrf check failed",
		zap.String("path", r.URL.Path),
		zap.String("origin", r.Header.Get("Origin")),
		zap.String("referer", r.Referer()),
		zap.Error(csrf.FailureReason(r)),
	)
	cc.render(w, r, http.StatusForbidden, "403csrf", notFoundPage{cc.page(r, "Forbidden"), r.URL.Path})
}
