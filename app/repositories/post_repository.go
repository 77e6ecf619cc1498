package repositories

import (
	"errors"
	"fmt"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post. The author and, when set, the group
// must exist.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	return r.db.Update(func(txn *badger.Txn) error {
		if err := requireRefs(txn, post); err != nil {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := txn.Set(pairKey(AuthorPostsIndexPrefix, post.AuthorID, id), []byte{}); err != nil {
			return err
		}
		if post.GroupID != nil {
			if err := txn.Set(pairKey(GroupPostsIndexPrefix, *post.GroupID, id), []byte{}); err != nil {
				return err
			}
		}
		return setEntity(txn, idKey(PostKeyPrefix, id), post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update overwrites the text, group and image of an existing post.
// Author and creation time are kept from the stored record.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := idKey(PostKeyPrefix, post.ID)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}
		post.AuthorID = existing.AuthorID
		post.CreatedAt = existing.CreatedAt

		if err := requireRefs(txn, post); err != nil {
			return err
		}

		if existing.GroupID != nil {
			if err := txn.Delete(pairKey(GroupPostsIndexPrefix, *existing.GroupID, post.ID)); err != nil {
				return err
			}
		}
		if post.GroupID != nil {
			if err := txn.Set(pairKey(GroupPostsIndexPrefix, *post.GroupID, post.ID), []byte{}); err != nil {
				return err
			}
		}
		return setEntity(txn, key, post)
	})
}

// Delete deletes a post and its comments
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return deletePostTxn(txn, id)
	})
}

// List retrieves every post, newest first
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = listEntities[models.Post](txn, []byte(PostKeyPrefix))
		return err
	})
	if err != nil {
		return nil, err
	}
	sortPosts(posts)
	return posts, nil
}

// ListByGroup retrieves the posts published in a group
func (r *BadgerPostRepository) ListByGroup(groupID int) ([]*models.Post, error) {
	return r.listScoped(GroupPostsIndexPrefix, groupID)
}

// ListByAuthor retrieves the posts written by a user
func (r *BadgerPostRepository) ListByAuthor(authorID int) ([]*models.Post, error) {
	return r.listScoped(AuthorPostsIndexPrefix, authorID)
}

// ListByAuthors retrieves the posts written by any of the given users
func (r *BadgerPostRepository) ListByAuthors(authorIDs []int) ([]*models.Post, error) {
	var posts []*models.Post
	seen := make(map[int]bool, len(authorIDs))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, authorID := range authorIDs {
			if seen[authorID] {
				continue
			}
			seen[authorID] = true
			batch, err := loadScoped(txn, AuthorPostsIndexPrefix, authorID)
			if err != nil {
				return err
			}
			posts = append(posts, batch...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPosts(posts)
	return posts, nil
}

func (r *BadgerPostRepository) listScoped(prefix string, owner int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = loadScoped(txn, prefix, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortPosts(posts)
	return posts, nil
}

func loadScoped(txn *badger.Txn, prefix string, owner int) ([]*models.Post, error) {
	ids, err := idsWithPrefix(txn, scopeKey(prefix, owner))
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		var post models.Post
		err := getEntity(txn, idKey(PostKeyPrefix, id), &post)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

// requireRefs checks that the author and group of post exist.
func requireRefs(txn *badger.Txn, post *models.Post) error {
	found, err := exists(txn, idKey(UserKeyPrefix, post.AuthorID))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("author %d: %w", post.AuthorID, ErrNotFound)
	}
	if post.GroupID == nil {
		return nil
	}
	found, err = exists(txn, idKey(GroupKeyPrefix, *post.GroupID))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("group %d: %w", *post.GroupID, ErrNotFound)
	}
	return nil
}

func deletePostTxn(txn *badger.Txn, id int) error {
	var post models.Post
	if err := getEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
		return err
	}

	commentIDs, err := idsWithPrefix(txn, scopeKey(PostCommentsIndexPrefix, id))
	if err != nil {
		return err
	}
	for _, cid := range commentIDs {
		if err := deleteCommentTxn(txn, cid); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if post.GroupID != nil {
		if err := txn.Delete(pairKey(GroupPostsIndexPrefix, *post.GroupID, id)); err != nil {
			return err
		}
	}
	return deleteKeys(txn,
		pairKey(AuthorPostsIndexPrefix, post.AuthorID, id),
		idKey(PostKeyPrefix, id),
	)
}
