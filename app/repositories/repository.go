package repositories

import (
	"fmt"

	"yatube/app/errs"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ErrNotFound is returned by every repository when a record is missing.
var ErrNotFound error = errs.NotFound

// Store bundles the Badger backed repositories sharing one database.
type Store struct {
	db       *badger.DB
	Users    *BadgerUserRepository
	Groups   *BadgerGroupRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
	Follows  *BadgerFollowRepository
}

// NewStore wires all repositories to db.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewBadgerUserRepository(db),
		Groups:   NewBadgerGroupRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Follows:  NewBadgerFollowRepository(db),
	}
}

// DB returns the underlying database handle.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Open opens the Badger database at path. An empty path opens an
// in-memory database, which is what the tests use.
func Open(path string, logger *zap.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.Sugar().Named("badger")})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return db, nil
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
