// internal/storage/storage.go
package storage

import "github.com/launchdash/dashboard/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// ImportLaunches stores a new dataset and assigns ds.ID
	ImportLaunches(ds *core.DatasetInfo, launches []core.Launch) error

	// Reads return core.ErrNoDataset before the first import
	Launches() ([]core.Launch, error)
	LatestDataset() (core.DatasetInfo, error)
}

// Exportable is an optional interface for backends that write the dataset
// to a file when closed.
type Exportable interface {
	ExportPath() string
}
