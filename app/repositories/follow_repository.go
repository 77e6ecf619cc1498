package repositories

import (
	"fmt"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// The edge key is follow:<follower>:<author>, so a pair can only be
// stored once.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

// Create stores the edge if it is absent. Self-follows are ignored.
func (r *BadgerFollowRepository) Create(follow *models.Follow) (bool, error) {
	if follow.FollowerID == follow.AuthorID {
		return false, nil
	}
	created := false
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range []int{follow.FollowerID, follow.AuthorID} {
			found, err := exists(txn, idKey(UserKeyPrefix, id))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("user %d: %w", id, ErrNotFound)
			}
		}

		key := pairKey(FollowKeyPrefix, follow.FollowerID, follow.AuthorID)
		found, err := exists(txn, key)
		if err != nil || found {
			return err
		}

		if follow.CreatedAt.IsZero() {
			follow.CreatedAt = time.Now()
		}
		if err := setEntity(txn, key, follow); err != nil {
			return err
		}
		if err := txn.Set(pairKey(FollowersIndexPrefix, follow.AuthorID, follow.FollowerID), []byte{}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Delete removes the edge; a missing edge is not an error.
func (r *BadgerFollowRepository) Delete(followerID, authorID int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return deleteFollowTxn(txn, followerID, authorID)
	})
}

// Exists reports whether followerID follows authorID.
func (r *BadgerFollowRepository) Exists(followerID, authorID int) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, pairKey(FollowKeyPrefix, followerID, authorID))
		return err
	})
	return found, err
}

// ListFollowing returns the IDs of the authors followerID follows.
func (r *BadgerFollowRepository) ListFollowing(followerID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = idsWithPrefix(txn, scopeKey(FollowKeyPrefix, followerID))
		return err
	})
	return ids, err
}

// CountFollowers returns how many users follow authorID.
func (r *BadgerFollowRepository) CountFollowers(authorID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countWithPrefix(txn, scopeKey(FollowersIndexPrefix, authorID))
		return err
	})
	return n, err
}

// CountFollowing returns how many authors followerID follows.
func (r *BadgerFollowRepository) CountFollowing(followerID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countWithPrefix(txn, scopeKey(FollowKeyPrefix, followerID))
		return err
	})
	return n, err
}

func deleteFollowTxn(txn *badger.Txn, followerID, authorID int) error {
	return deleteKeys(txn,
		pairKey(FollowKeyPrefix, followerID, authorID),
		pairKey(FollowersIndexPrefix, authorID, followerID),
	)
}
