package services

import (
	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages communities
type GroupService struct {
	groupRepo repositories.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// Create validates the form and stores a new group.
func (s *GroupService) Create(form *models.GroupForm) (*models.Group, error) {
	if err := form.Clean(); err != nil {
		return nil, err
	}
	group := &models.Group{Title: form.Title, Slug: form.Slug, Description: form.Description}
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, taken(err)
	}
	return group, nil
}

// GetBySlug retrieves a group by slug
func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(slug)
}

// List returns every group ordered by title
func (s *GroupService) List() ([]*models.Group, error) {
	return s.groupRepo.List()
}

// Delete removes a group; its posts stay without a group.
func (s *GroupService) Delete(slug string) error {
	group, err := s.groupRepo.GetBySlug(slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(group.ID)
}
