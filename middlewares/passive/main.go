// Package passive provides a middleware that lets pasted-link expansion run only in groups that have not
// switched it off. Settings live in SQLite (DATA_DIR/passive.db); groups without a row are enabled.
package passive

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Hafuunano/Protocol-ConvertTool/protocol"
	log "github.com/sirupsen/logrus"

	"github.com/kc1awv/Plugin-Collections/lib/database/config"
)

const (
	dbFileName = "passive.db"
	dbPathEnv  = "PASSIVE_DB_PATH"
)

var (
	storeOnce    sync.Once
	defaultStore *Store
	storeErr     error
)

// DefaultStore opens the shared settings store once. PASSIVE_DB_PATH overrides DATA_DIR/passive.db.
func DefaultStore() (*Store, error) {
	storeOnce.Do(func() {
		dbPath := os.Getenv(dbPathEnv)
		if dbPath == "" {
			dbPath = filepath.Join(config.DataDir(), dbFileName)
		}
		defaultStore, storeErr = Open(dbPath)
	})
	return defaultStore, storeErr
}

// Handler returns a middleware that calls next only when expansion is enabled for ctx.GroupID().
func Handler(s *Store) func(protocol.Context, func()) {
	return func(ctx protocol.Context, next func()) {
		Gate(s, ctx.GroupID(), next)
	}
}

// Gate calls next when expansion is enabled for groupID. Private chats (empty groupID) and a nil store
// always pass. A store error is logged and treated as enabled.
func Gate(s *Store, groupID string, next func()) {
	if groupID == "" || s == nil {
		next()
		return
	}
	enabled, err := s.Enabled(groupID)
	if err != nil {
		log.WithError(err).WithField("group", groupID).Warn("passive setting lookup failed")
		next()
		return
	}
	if enabled {
		next()
	}
}
