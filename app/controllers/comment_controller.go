package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	posts    *PostController
	comments *services.CommentService
}

// NewCommentController creates a new CommentController. Invalid
// comments are shown on the post page, which posts renders.
func NewCommentController(svc *services.Services, posts *PostController) *CommentController {
	return &CommentController{posts: posts, comments: svc.Comments}
}

// Create adds a comment to a post and returns to it
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		cc.posts.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := &models.CommentForm{Text: r.PostFormValue("text")}

	_, err = cc.comments.AddComment(auth.GetUser(r.Context()), id, form)
	if formErrors, ok := fieldErrors(err); ok {
		cc.posts.showPost(w, r, id, form, formErrors)
		return
	}
	if err != nil {
		cc.posts.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(id), http.StatusFound)
}
