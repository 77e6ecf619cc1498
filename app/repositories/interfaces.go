package repositories

import "yatube/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetMany(ids []int) (map[int]*models.User, error)
	List() ([]*models.User, error)
	RevokeSessions(id int) (int, error)
	Delete(id int) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	Delete(id int) error
}

// PostRepository defines the interface for post data access.
// Every listing is ordered newest first.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
	List() ([]*models.Post, error)
	ListByGroup(groupID int) ([]*models.Post, error)
	ListByAuthor(authorID int) ([]*models.Post, error)
	ListByAuthors(authorIDs []int) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Delete(id int) error
}

// FollowRepository defines the interface for the follow relation.
// Create reports whether a new edge was stored.
type FollowRepository interface {
	Create(follow *models.Follow) (bool, error)
	Delete(followerID, authorID int) error
	Exists(followerID, authorID int) (bool, error)
	ListFollowing(followerID int) ([]int, error)
	CountFollowers(authorID int) (int, error)
	CountFollowing(followerID int) (int, error)
}
