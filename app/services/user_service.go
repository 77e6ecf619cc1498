package services

import (
	"fmt"

	"yatube/app/auth"
	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/repositories"
)

// UserService handles registration, login and account removal
type UserService struct {
	userRepo repositories.UserRepository
	postRepo repositories.PostRepository
	images   ImageStore
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, postRepo repositories.PostRepository, images ImageStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		images:   images,
	}
}

// Register validates the signup form and stores a new user. Taken
// usernames, emails and phones come back as form errors.
func (s *UserService) Register(form *models.SignupForm) (*models.User, error) {
	if err := form.Clean(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Phone:        form.Phone,
		PasswordHash: hash,
	}
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, taken(err)
	}
	return user, nil
}

// Authenticate checks a login form. Unknown users and wrong
// passwords both return errs.InvalidCredentials.
func (s *UserService) Authenticate(form *models.LoginForm) (*models.User, error) {
	if err := form.Clean(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(form.Username)
	if isNotFound(err) {
		return nil, errs.InvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, form.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(id int) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// GetByUsername retrieves a user by handle
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// List returns every account ordered by ID.
func (s *UserService) List() ([]*models.User, error) {
	return s.userRepo.List()
}

// EndSessions invalidates every session issued to the user so far.
func (s *UserService) EndSessions(id int) error {
	_, err := s.userRepo.RevokeSessions(id)
	return err
}

// Delete removes a user and everything they own, then cleans up the
// images of their posts.
func (s *UserService) Delete(username string) error {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	posts, err := s.postRepo.ListByAuthor(user.ID)
	if err != nil {
		return fmt.Errorf("failed to list posts of %s: %w", username, err)
	}
	if err := s.userRepo.Delete(user.ID); err != nil {
		return err
	}
	for _, p := range posts {
		if err := s.images.Delete(p.Image); err != nil {
			return fmt.Errorf("failed to remove image of post %d: %w", p.ID, err)
		}
	}
	return nil
}
