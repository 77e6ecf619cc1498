package services

import (
	"yatube/app/models"
	"yatube/app/repositories"
)

// ImageStore persists uploaded post images. Save returns the stored
// path; Delete ignores paths that no longer exist.
type ImageStore interface {
	Save(up *models.Upload) (string, error)
	Delete(path string) error
}

// Services bundles every service over one store.
type Services struct {
	Users    *UserService
	Groups   *GroupService
	Posts    *PostService
	Comments *CommentService
	Follows  *FollowService
	Feeds    *FeedService
}

// New wires the services to the repositories in store.
func New(store *repositories.Store, images ImageStore) *Services {
	return &Services{
		Users:    NewUserService(store.Users, store.Posts, images),
		Groups:   NewGroupService(store.Groups),
		Posts:    NewPostService(store.Posts, store.Comments, store.Users, store.Groups, images),
		Comments: NewCommentService(store.Comments, store.Posts),
		Follows:  NewFollowService(store.Follows),
		Feeds:    NewFeedService(store.Posts, store.Users, store.Groups, store.Follows),
	}
}

// hydrate attaches authors and groups to posts for rendering.
func hydrate(users repositories.UserRepository, groups repositories.GroupRepository, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	authors, err := users.GetMany(ids)
	if err != nil {
		return err
	}

	cache := map[int]*models.Group{}
	for _, p := range posts {
		p.Author = authors[p.AuthorID]
		if p.GroupID == nil {
			continue
		}
		g, ok := cache[*p.GroupID]
		if !ok {
			g, err = groups.GetByID(*p.GroupID)
			if err != nil && !isNotFound(err) {
				return err
			}
			cache[*p.GroupID] = g
		}
		p.Group = g
	}
	return nil
}
