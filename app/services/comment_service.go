package services

import (
	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment stores a comment by author on post postID. A missing
// post is reported before the text is checked.
func (s *CommentService) AddComment(author *models.User, postID int, form *models.CommentForm) (*models.Comment, error) {
	if author == nil {
		return nil, errs.Unauthorized
	}
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if err := form.Clean(); err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: form.Text, AuthorID: author.ID}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

// ListPostComments retrieves all comments for a post, newest first
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(postID)
}
