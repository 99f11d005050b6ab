package testsupport

import (
	"testing"

	"platebundle/internal/config"
	"platebundle/internal/ledger"
)

// MustOpenLedger opens the ledger at the config's ledger path and closes it
// when the test completes.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
