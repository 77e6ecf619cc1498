package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// FollowController serves the followed feed and the follow buttons
type FollowController struct {
	base
	users   *services.UserService
	follows *services.FollowService
	feeds   *services.FeedService
}

// NewFollowController creates a new FollowController
func NewFollowController(svc *services.Services, v *views.Renderer, log *zap.Logger) *FollowController {
	return &FollowController{
		base:    base{views: v, log: log},
		users:   svc.Users,
		follows: svc.Follows,
		feeds:   svc.Feeds,
	}
}

// Index shows posts by the authors the viewer follows
func (fc *FollowController) Index(w http.ResponseWriter, r *http.Request) {
	feed, err := fc.feeds.Assemble(auth.GetUser(r.Context()), services.FollowedPosts(), r.URL.Query().Get("page"))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	fc.render(w, r, http.StatusOK, "follow", feedPage{fc.page(r, "Following"), feed.Page})
}

// Follow subscribes the viewer to an author
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	fc.change(w, r, fc.follows.Follow)
}

// Unfollow removes the subscription
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	fc.change(w, r, fc.follows.Unfollow)
}

func (fc *FollowController) change(w http.ResponseWriter, r *http.Request, op func(followerID, authorID int) error) {
	viewer := auth.GetUser(r.Context())
	if viewer == nil {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	author, err := fc.users.GetByUsername(mux.Vars(r)["username"])
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if err := op(viewer.ID, author.ID); err != nil {
		fc.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}
