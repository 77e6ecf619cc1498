package services

import (
	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService is the registry of who follows whom
type FollowService struct {
	followRepo repositories.FollowRepository
}

// NewFollowService creates a new FollowService
func NewFollowService(followRepo repositories.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

// Follow creates the edge if it is absent. Following yourself and
// following twice are both no-ops. An unknown author is errs.NotFound.
func (s *FollowService) Follow(followerID, authorID int) error {
	if followerID == authorID {
		return nil
	}
	_, err := s.followRepo.Create(&models.Follow{FollowerID: followerID, AuthorID: authorID})
	return err
}

// Unfollow deletes the edge if present.
func (s *FollowService) Unfollow(followerID, authorID int) error {
	return s.followRepo.Delete(followerID, authorID)
}

// IsFollowing reports whether followerID follows authorID.
func (s *FollowService) IsFollowing(followerID, authorID int) (bool, error) {
	if followerID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(followerID, authorID)
}

// FollowingIDs lists the authors userID follows.
func (s *FollowService) FollowingIDs(userID int) ([]int, error) {
	return s.followRepo.ListFollowing(userID)
}

// Counts returns how many users follow userID and how many userID
// follows.
func (s *FollowService) Counts(userID int) (followers, following int, err error) {
	if followers, err = s.followRepo.CountFollowers(userID); err != nil {
		return 0, 0, err
	}
	if following, err = s.followRepo.CountFollowing(userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
