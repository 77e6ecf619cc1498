package controllers

import (
	"errors"
	"net/http"

	"yatube/app/auth"
	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/paginator"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type feedPage struct {
	views.Base
	Page *paginator.Page[*models.Post]
}

type groupPage struct {
	feedPage
	Group *models.Group
}

type profilePage struct {
	feedPage
	Author         *models.User
	Following      bool
	Followers      int
	FollowingCount int
}

type detailPage struct {
	views.Base
	Post    *models.Post
	Form    *models.CommentForm
	Errors  map[string]string
	CanEdit bool
}

type postFormPage struct {
	views.Base
	Form   *models.PostForm
	Errors map[string]string
	Groups []*models.Group
	IsEdit bool
	Post   *models.Post
}

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	posts     *services.PostService
	groups    *services.GroupService
	feeds     *services.FeedService
	follows   *services.FollowService
	maxUpload int64
}

// NewPostController creates a new PostController
func NewPostController(svc *services.Services, v *views.Renderer, log *zap.Logger, maxUpload int64) *PostController {
	return &PostController{
		base:      base{views: v, log: log},
		posts:     svc.Posts,
		groups:    svc.Groups,
		feeds:     svc.Feeds,
		follows:   svc.Follows,
		maxUpload: maxUpload,
	}
}

// Index shows the global feed
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	feed, err := pc.feeds.Assemble(auth.GetUser(r.Context()), services.AllPosts(), r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "index", feedPage{pc.page(r, "Latest updates"), feed.Page})
}

// GroupPosts shows the feed of one group
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := pc.feeds.Assemble(auth.GetUser(r.Context()), services.GroupPosts(mux.Vars(r)["slug"]), r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "group_list", groupPage{
		feedPage: feedPage{pc.page(r, "Posts of the "+feed.Group.Title+" group"), feed.Page},
		Group:    feed.Group,
	})
}

// Profile shows an author's posts and follow controls
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetUser(r.Context())
	feed, err := pc.feeds.Assemble(viewer, services.AuthorPosts(mux.Vars(r)["username"]), r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	data := profilePage{
		feedPage: feedPage{pc.page(r, "Profile of "+feed.Author.FullName()), feed.Page},
		Author:   feed.Author,
	}
	if data.Followers, data.FollowingCount, err = pc.follows.Counts(feed.Author.ID); err != nil {
		pc.fail(w, r, err)
		return
	}
	if viewer != nil {
		if data.Following, err = pc.follows.IsFollowing(viewer.ID, feed.Author.ID); err != nil {
			pc.fail(w, r, err)
			return
		}
	}
	pc.render(w, r, http.StatusOK, "profile", data)
}

// Show displays a post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.showPost(w, r, id, &models.CommentForm{}, nil)
}

func (pc *PostController) showPost(w http.ResponseWriter, r *http.Request, id int, form *models.CommentForm, formErrors map[string]string) {
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	viewer := auth.GetUser(r.Context())
	pc.render(w, r, http.StatusOK, "post_detail", detailPage{
		Base:    pc.page(r, "Post "+post.Excerpt()),
		Post:    post,
		Form:    form,
		Errors:  formErrors,
		CanEdit: viewer != nil && viewer.ID == post.AuthorID,
	})
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.renderForm(w, r, &models.PostForm{}, nil, nil)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	viewer := auth.GetUser(r.Context())
	form, err := parsePostForm(w, r, pc.maxUpload)
	if err == nil {
		_, err = pc.posts.CreatePost(viewer, form)
	}
	if formErrors, ok := fieldErrors(err); ok {
		pc.renderForm(w, r, form, formErrors, nil)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(viewer.Username), http.StatusFound)
}

// EditForm displays the edit form to the post's author
func (pc *PostController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	post, err := pc.posts.PostForEdit(auth.GetUser(r.Context()), id)
	if errors.Is(err, errs.Forbidden) {
		http.Redirect(w, r, postURL(id), http.StatusFound)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	form := &models.PostForm{Text: post.Text, GroupID: post.GroupID}
	pc.renderForm(w, r, form, nil, post)
}

// Edit handles updating a post. Non-authors are sent back to the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	viewer := auth.GetUser(r.Context())
	post, err := pc.posts.PostForEdit(viewer, id)
	if errors.Is(err, errs.Forbidden) {
		http.Redirect(w, r, postURL(id), http.StatusFound)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	form, err := parsePostForm(w, r, pc.maxUpload)
	if err == nil {
		_, err = pc.posts.EditPost(viewer, id, form)
	}
	if formErrors, ok := fieldErrors(err); ok {
		pc.renderForm(w, r, form, formErrors, post)
		return
	}
	if err != nil && !errors.Is(err, errs.Forbidden) {
		pc.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(id), http.StatusFound)
}

// Delete removes a post. Non-authors are sent back to the post.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	viewer := auth.GetUser(r.Context())
	err = pc.posts.DeletePost(viewer, id)
	switch {
	case err == nil:
		http.Redirect(w, r, profileURL(viewer.Username), http.StatusFound)
	case errors.Is(err, errs.Forbidden):
		http.Redirect(w, r, postURL(id), http.StatusFound)
	default:
		pc.fail(w, r, err)
	}
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, form *models.PostForm, formErrors map[string]string, post *models.Post) {
	groups, err := pc.groups.List()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	pc.render(w, r, http.StatusOK, "create_post", postFormPage{
		Base:   pc.page(r, title),
		Form:   form,
		Errors: formErrors,
		Groups: groups,
		IsEdit: post != nil,
		Post:   post,
	})
}
