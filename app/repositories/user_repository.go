package repositories

import (
	"errors"
	"sort"

	"yatube/app/errs"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user. Username, email and phone are unique.
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	return r.db.Update(func(txn *badger.Txn) error {
		unique := []struct {
			key []byte
			err error
		}{
			{lookupKey(UsernameIndexPrefix, user.Username), errs.UsernameTaken},
			{lookupKey(EmailIndexPrefix, user.Email), errs.EmailTaken},
			{lookupKey(PhoneIndexPrefix, user.Phone), errs.PhoneTaken},
		}
		for _, u := range unique {
			found, err := exists(txn, u.key)
			if err != nil {
				return err
			}
			if found {
				return u.err
			}
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		for _, u := range unique {
			if err := txn.Set(u.key, encodeID(id)); err != nil {
				return err
			}
		}
		return setEntity(txn, idKey(UserKeyPrefix, id), user)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by handle
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupID(txn, lookupKey(UsernameIndexPrefix, username))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMany loads the users with the given IDs. Missing IDs are skipped.
func (r *BadgerUserRepository) GetMany(ids []int) (map[int]*models.User, error) {
	users := make(map[int]*models.User, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, ok := users[id]; ok {
				continue
			}
			var user models.User
			err := getEntity(txn, idKey(UserKeyPrefix, id), &user)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// List returns every user ordered by ID.
func (r *BadgerUserRepository) List() ([]*models.User, error) {
	var users []*models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		users, err = listEntities[models.User](txn, []byte(UserKeyPrefix))
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// RevokeSessions bumps the user's session version and returns the new
// value.
func (r *BadgerUserRepository) RevokeSessions(id int) (int, error) {
	var version int
	err := r.db.Update(func(txn *badger.Txn) error {
		var user models.User
		if err := getEntity(txn, idKey(UserKeyPrefix, id), &user); err != nil {
			return err
		}
		user.SessionVersion++
		version = user.SessionVersion
		return setEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	return version, err
}

// Delete removes a user together with their posts, their comments and
// every follow edge that touches them.
func (r *BadgerUserRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var user models.User
		if err := getEntity(txn, idKey(UserKeyPrefix, id), &user); err != nil {
			return err
		}

		postIDs, err := idsWithPrefix(txn, scopeKey(AuthorPostsIndexPrefix, id))
		if err != nil {
			return err
		}
		for _, pid := range postIDs {
			if err := deletePostTxn(txn, pid); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		commentIDs, err := idsWithPrefix(txn, scopeKey(AuthorCommentsIndexPrefix, id))
		if err != nil {
			return err
		}
		for _, cid := range commentIDs {
			if err := deleteCommentTxn(txn, cid); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		following, err := idsWithPrefix(txn, scopeKey(FollowKeyPrefix, id))
		if err != nil {
			return err
		}
		for _, authorID := range following {
			if err := deleteFollowTxn(txn, id, authorID); err != nil {
				return err
			}
		}
		followers, err := idsWithPrefix(txn, scopeKey(FollowersIndexPrefix, id))
		if err != nil {
			return err
		}
		for _, followerID := range followers {
			if err := deleteFollowTxn(txn, followerID, id); err != nil {
				return err
			}
		}

		return deleteKeys(txn,
			lookupKey(UsernameIndexPrefix, user.Username),
			lookupKey(EmailIndexPrefix, user.Email),
			lookupKey(PhoneIndexPrefix, user.Phone),
			idKey(UserKeyPrefix, id),
		)
	})
}
