package library

import (
	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/kv"
)

// Library bundles the record store and index sharing one kv.Store.
type Library struct {
	Records *Records
	Index   *Index
}

// New returns a Library over store.
func New(store kv.Store, logger *zap.Logger) *Library {
	return &Library{
		Records: NewRecords(store, logger),
		Index:   NewIndex(store, logger),
	}
}
