package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for primary records
	UserKeyPrefix    = "user:"
	GroupKeyPrefix   = "group:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	// follow:<follower>:<author>
	FollowKeyPrefix = "follow:"

	// Unique lookups, value is the record ID
	UsernameIndexPrefix = "idx:user:username:"
	EmailIndexPrefix    = "idx:user:email:"
	PhoneIndexPrefix    = "idx:user:phone:"
	SlugIndexPrefix     = "idx:group:slug:"

	// Scoped listings, key is <prefix><owner>:<id> with an empty value
	GroupPostsIndexPrefix     = "idx:group:posts:"
	AuthorPostsIndexPrefix    = "idx:user:posts:"
	AuthorCommentsIndexPrefix = "idx:user:comments:"
	PostCommentsIndexPrefix   = "idx:post:comments:"
	FollowersIndexPrefix      = "idx:user:followers:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		id = 1
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint64(val) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	if err := txn.Set([]byte(seqKey), encodeID(int(id))); err != nil {
		return 0, err
	}
	return int(id), nil
}

// IDs are zero padded so that lexical key order is numeric order.
func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

func scopeKey(prefix string, owner int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", prefix, owner))
}

func pairKey(prefix string, owner, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", prefix, owner, id))
}

func lookupKey(prefix, value string) []byte {
	return []byte(prefix + value)
}

func encodeID(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func decodeID(b []byte) (int, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid id value of %d bytes", len(b))
	}
	return int(binary.BigEndian.Uint64(b)), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

// getEntity loads key into entity, returning ErrNotFound when absent.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// lookupID resolves a unique index entry to the record ID.
func lookupID(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = decodeID(val)
		return err
	})
	return id, err
}

// idsWithPrefix collects the trailing IDs of every key under prefix.
// The iterator is closed before returning so callers may write.
func idsWithPrefix(txn *badger.Txn, prefix []byte) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		k := it.Item().Key()
		id, err := strconv.Atoi(string(k[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("malformed index key %q: %v", k, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func countWithPrefix(txn *badger.Txn, prefix []byte) (int, error) {
	ids, err := idsWithPrefix(txn, prefix)
	return len(ids), err
}

// listEntities decodes every record stored under prefix.
func listEntities[T any](txn *badger.Txn, prefix []byte) ([]*T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []*T
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &v)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

func deleteKeys(txn *badger.Txn, keys ...[]byte) error {
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// sortPosts orders posts newest first, breaking ties by ID.
func sortPosts(posts []*models.Post) {
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return b.ID - a.ID
	})
}

func sortComments(comments []*models.Comment) {
	slices.SortStableFunc(comments, func(a, b *models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return b.ID - a.ID
	})
}
