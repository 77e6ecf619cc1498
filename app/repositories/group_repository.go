package repositories

import (
	"errors"
	"sort"

	"yatube/app/errs"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

// Create stores a new group; the slug must be unused.
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	return r.db.Update(func(txn *badger.Txn) error {
		slugKey := lookupKey(SlugIndexPrefix, group.Slug)
		taken, err := exists(txn, slugKey)
		if err != nil {
			return err
		}
		if taken {
			return errs.SlugTaken
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		if err := txn.Set(slugKey, encodeID(id)); err != nil {
			return err
		}
		return setEntity(txn, idKey(GroupKeyPrefix, id), group)
	})
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupID(txn, lookupKey(SlugIndexPrefix, slug))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by title.
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		groups, err = listEntities[models.Group](txn, []byte(GroupKeyPrefix))
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

// Delete removes a group. Its posts survive with no group.
func (r *BadgerGroupRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var group models.Group
		if err := getEntity(txn, idKey(GroupKeyPrefix, id), &group); err != nil {
			return err
		}

		postIDs, err := idsWithPrefix(txn, scopeKey(GroupPostsIndexPrefix, id))
		if err != nil {
			return err
		}
		for _, pid := range postIDs {
			var post models.Post
			err := getEntity(txn, idKey(PostKeyPrefix, pid), &post)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			post.GroupID = nil
			if err := setEntity(txn, idKey(PostKeyPrefix, pid), &post); err != nil {
				return err
			}
			if err := txn.Delete(pairKey(GroupPostsIndexPrefix, id, pid)); err != nil {
				return err
			}
		}

		return deleteKeys(txn,
			lookupKey(SlugIndexPrefix, group.Slug),
			idKey(GroupKeyPrefix, id),
		)
	})
}
