package client

import (
	"github.com/driftstore/driftstore/internal/datastore"
	"github.com/driftstore/driftstore/models"
)

// Collection builds a typed DataStore over one backend collection, wired to
// the client's shared cache, sync queue, and fetcher. wireNames is the
// explicit member-to-wire-name map used to translate queries over T.
//
//	books, err := client.Collection[Book](c, "books", datastore.StoreTypeCache,
//		map[string]string{"Title": "title", "Year": "year"})
//
// A NETWORK-type store carries no local state, so no cache or queue is
// attached for it.
func Collection[T any, PT interface {
	*T
	models.Entity
}](c *Client, name string, storeType datastore.StoreType, wireNames map[string]string) (*datastore.DataStore[T, PT], error) {
	deps := datastore.Deps{
		Fetcher: c.fetcher,
		Logger:  c.logger,
	}
	if storeType != datastore.StoreTypeNetwork {
		deps.Cache = c.manager.GetCache(name)
		deps.Queue = c.manager.GetSyncQueue(name)
		deps.WriteLock = c.manager.WriteLock(name)
	}

	return datastore.New[T, PT](name, storeType, wireNames, deps, c.cfg.Sync)
}
