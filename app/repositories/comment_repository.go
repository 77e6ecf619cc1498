package repositories

import (
	"errors"
	"fmt"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment on an existing post
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	return r.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, idKey(PostKeyPrefix, comment.PostID))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
		}
		found, err = exists(txn, idKey(UserKeyPrefix, comment.AuthorID))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("author %d: %w", comment.AuthorID, ErrNotFound)
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		if err := txn.Set(pairKey(PostCommentsIndexPrefix, comment.PostID, id), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(pairKey(AuthorCommentsIndexPrefix, comment.AuthorID, id), []byte{}); err != nil {
			return err
		}
		return setEntity(txn, idKey(CommentKeyPrefix, id), comment)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(CommentKeyPrefix, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, newest first
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := idsWithPrefix(txn, scopeKey(PostCommentsIndexPrefix, postID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			var comment models.Comment
			err := getEntity(txn, idKey(CommentKeyPrefix, id), &comment)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortComments(comments)
	return comments, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return deleteCommentTxn(txn, id)
	})
}

func deleteCommentTxn(txn *badger.Txn, id int) error {
	var comment models.Comment
	if err := getEntity(txn, idKey(CommentKeyPrefix, id), &comment); err != nil {
		return err
	}
	return deleteKeys(txn,
		pairKey(PostCommentsIndexPrefix, comment.PostID, id),
		pairKey(AuthorCommentsIndexPrefix, comment.AuthorID, id),
		idKey(CommentKeyPrefix, id),
	)
}
