package services

import (
	"fmt"

	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/paginator"
	"yatube/app/repositories"
)

type feedKind int

const (
	feedAll feedKind = iota
	feedGroup
	feedAuthor
	feedFollowed
)

// FeedKind selects which posts a feed contains.
type FeedKind struct {
	kind feedKind
	key  string
}

// AllPosts is every post.
func AllPosts() FeedKind { return FeedKind{kind: feedAll} }

// GroupPosts is the posts of the group with slug.
func GroupPosts(slug string) FeedKind { return FeedKind{kind: feedGroup, key: slug} }

// AuthorPosts is the posts written by handle.
func AuthorPosts(handle string) FeedKind { return FeedKind{kind: feedAuthor, key: handle} }

// FollowedPosts is the posts of the authors the viewer follows.
func FollowedPosts() FeedKind { return FeedKind{kind: feedFollowed} }

func (k FeedKind) String() string {
	switch k.kind {
	case feedGroup:
		return "group:" + k.key
	case feedAuthor:
		return "author:" + k.key
	case feedFollowed:
		return "followed"
	default:
		return "all"
	}
}

// Feed is one page of posts, newest first. Group or Author is set
// for the matching kinds.
type Feed struct {
	Kind   FeedKind
	Page   *paginator.Page[*models.Post]
	Group  *models.Group
	Author *models.User
}

// FeedService assembles paginated feeds
type FeedService struct {
	postRepo   repositories.PostRepository
	userRepo   repositories.UserRepository
	groupRepo  repositories.GroupRepository
	followRepo repositories.FollowRepository
}

// NewFeedService creates a new FeedService
func NewFeedService(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	followRepo repositories.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		followRepo: followRepo,
	}
}

// Assemble returns the requested page of a feed. page is the raw
// query value; out-of-range pages resolve to the nearest valid one.
// The followed feed needs a viewer and fails with errs.Unauthorized
// without one.
func (s *FeedService) Assemble(viewer *models.User, kind FeedKind, page string) (*Feed, error) {
	feed := &Feed{Kind: kind}

	var posts []*models.Post
	var err error
	switch kind.kind {
	case feedAll:
		posts, err = s.postRepo.List()
	case feedGroup:
		if feed.Group, err = s.groupRepo.GetBySlug(kind.key); err != nil {
			return nil, err
		}
		posts, err = s.postRepo.ListByGroup(feed.Group.ID)
	case feedAuthor:
		if feed.Author, err = s.userRepo.GetByUsername(kind.key); err != nil {
			return nil, err
		}
		posts, err = s.postRepo.ListByAuthor(feed.Author.ID)
	case feedFollowed:
		if viewer == nil {
			return nil, errs.Unauthorized
		}
		var ids []int
		if ids, err = s.followRepo.ListFollowing(viewer.ID); err != nil {
			return nil, err
		}
		posts, err = s.postRepo.ListByAuthors(ids)
	default:
		return nil, fmt.Errorf("unknown feed kind %d", kind.kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s posts: %w", kind, err)
	}

	feed.Page = paginator.New(posts, paginator.PerPage).GetPage(page)
	if err := hydrate(s.userRepo, s.groupRepo, feed.Page.Items); err != nil {
		return nil, err
	}
	return feed, nil
}
