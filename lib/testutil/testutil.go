package testutil

import (
	"fmt"
	"testing"

	"sfcatalog/catalog"
	"sfcatalog/lib/telemetry"
)

// SetupCatalog opens an empty catalog in a temp directory with test
// telemetry configured, and returns it along with a cleanup func.
func SetupCatalog(t testing.TB, name string) (*catalog.Catalog, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", name))

	cat, err := catalog.Open(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	return cat, cleanup
}

// ReopenCatalog reloads the catalog at the same root, simulating a fresh
// process picking up existing on-disk state.
func ReopenCatalog(t testing.TB, cat *catalog.Catalog) *catalog.Catalog {
	reopened, err := catalog.Open(cat.Root, cat.Version)
	if err != nil {
		t.Fatal(err)
	}
	return reopened
}
