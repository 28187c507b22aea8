package store_test

import (
	"testing"

	"github.com/jask/jasktodo/internal/store"
	"github.com/jask/jasktodo/internal/store/storetest"
)

func TestMemoryBackendContract(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) store.Backend {
		return store.NewMemoryBackend()
	})
}
