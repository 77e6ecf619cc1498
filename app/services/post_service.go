package services

import (
	"fmt"

	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/repositories"
)

// PostService handles business logic for blog posts. The acting user
// is always passed in; ownership never comes from form data.
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
	groupRepo   repositories.GroupRepository
	images      ImageStore
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	images ImageStore,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		images:      images,
	}
}

// CreatePost validates the form and stores a new post owned by author.
func (s *PostService) CreatePost(author *models.User, form *models.PostForm) (*models.Post, error) {
	if author == nil {
		return nil, errs.Unauthorized
	}
	if err := form.Clean(); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(form.GroupID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Text: form.Text, AuthorID: author.ID}
	post.SetGroup(group)
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if form.Image != nil {
		if post.Image, err = s.images.Save(form.Image); err != nil {
			return nil, err
		}
	}
	if err := s.postRepo.Create(post); err != nil {
		_ = s.images.Delete(post.Image)
		return nil, err
	}
	post.Author = author
	return post, nil
}

// PostForEdit loads a post for its edit form. Only the author may
// edit a post.
func (s *PostService) PostForEdit(actor *models.User, id int) (*models.Post, error) {
	if actor == nil {
		return nil, errs.Unauthorized
	}
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, errs.Forbidden
	}
	return post, nil
}

// EditPost overwrites the text, group and image of a post. A new
// upload replaces the image, ClearImage removes it, otherwise the
// image is kept.
func (s *PostService) EditPost(actor *models.User, id int, form *models.PostForm) (*models.Post, error) {
	post, err := s.PostForEdit(actor, id)
	if err != nil {
		return nil, err
	}
	if err := form.Clean(); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(form.GroupID)
	if err != nil {
		return nil, err
	}

	post.Text = form.Text
	post.SetGroup(group)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	oldImage := post.Image
	switch {
	case form.Image != nil:
		if post.Image, err = s.images.Save(form.Image); err != nil {
			return nil, err
		}
	case form.ClearImage:
		post.Image = ""
	}

	if err := s.postRepo.Update(post); err != nil {
		if post.Image != oldImage {
			_ = s.images.Delete(post.Image)
		}
		return nil, err
	}
	if post.Image != oldImage {
		if err := s.images.Delete(oldImage); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// GetPost retrieves a post with its author, group and comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := hydrate(s.userRepo, s.groupRepo, []*models.Post{post}); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	ids := make([]int, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.userRepo.GetMany(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment authors: %w", err)
	}
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
		if err := post.AddComment(c); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// DeletePost deletes a post, its comments and its image. Only the
// author may delete a post.
func (s *PostService) DeletePost(actor *models.User, id int) error {
	post, err := s.PostForEdit(actor, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(id); err != nil {
		return err
	}
	return s.images.Delete(post.Image)
}

// resolveGroup maps a form group choice to a group. An unknown ID is a
// form error.
func (s *PostService) resolveGroup(id *int) (*models.Group, error) {
	if id == nil {
		return nil, nil
	}
	group, err := s.groupRepo.GetByID(*id)
	if isNotFound(err) {
		return nil, errs.Invalid("group", msgInvalidChoice)
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}
