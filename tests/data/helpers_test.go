package data

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	surrealdb "github.com/bobmcallan/flowlens/internal/storage/surrealdb"
	tcommon "github.com/bobmcallan/flowlens/tests/common"
)

// testConfig builds a config pointing at the shared SurrealDB container with
// a unique database per test for isolation.
func testConfig(t *testing.T) *common.Config {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage.Address = sc.Address()
	cfg.Storage.Namespace = "flowlens_data_test"
	cfg.Storage.Database = fmt.Sprintf("d_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000)
	cfg.Storage.Username = "root"
	cfg.Storage.Password = "root"

	return cfg
}

// testManager creates a StorageManager connected to the shared SurrealDB
// container.
func testManager(t *testing.T, cfg *common.Config) interfaces.StorageManager {
	t.Helper()

	mgr, err := surrealdb.NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("create storage manager: %v", err)
	}

	t.Cleanup(func() {
		mgr.Close()
	})

	return mgr
}

// testContext returns a background context.
func testContext() context.Context {
	return context.Background()
}
