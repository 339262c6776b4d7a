package mock

import (
	"github.com/driftstore/driftstore/internal/adapter"
	"github.com/driftstore/driftstore/internal/store"
)

// Committed generated code must keep pace with the interfaces it stands in
// for; these fail the build when a method is added without regenerating.
var (
	_ adapter.Fetcher = (*MockFetcher)(nil)
	_ store.Cache     = (*MockCache)(nil)
	_ store.Queue     = (*MockQueue)(nil)
)
