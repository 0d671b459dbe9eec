package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/models"
	tcommon "github.com/bobmcallan/flowlens/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	return &common.Config{
		Environment: "test",
		Storage: common.StorageConfig{
			Address:   sc.Address(),
			Namespace: "flowlens_test",
			Database:  fmt.Sprintf("mgr_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000),
			Username:  "root",
			Password:  "root",
		},
	}
}

func TestNewManager(t *testing.T) {
	cfg := testConfig(t)
	logger := common.NewSilentLogger()

	mgr, err := NewManager(logger, cfg)
	require.NoError(t, err)
	defer mgr.Close()

	assert.NotNil(t, mgr.TradeStore())
	assert.NotNil(t, mgr.InsightStore())
	assert.NotNil(t, mgr.PatternStore())
	assert.NotNil(t, mgr.IngestLogStore())
}

func TestManager_StoresShareConnection(t *testing.T) {
	cfg := testConfig(t)
	logger := common.NewSilentLogger()

	mgr, err := NewManager(logger, cfg)
	require.NoError(t, err)
	defer mgr.Close()

	ctx := context.Background()

	// A write through one accessor is visible through another query path
	n, err := mgr.TradeStore().InsertTrades(ctx, "trader-1", []models.TradeRecord{
		{
			TradeTime:  time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
			Ticker:     "NVDA",
			Premium:    250000,
			OptionType: models.OptionTypeCall,
			TradeType:  models.TradeTypeSweep,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	users, err := mgr.TradeStore().ActiveUsers(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"trader-1"}, users)
}

func TestNewManager_BadAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Address = "ws://127.0.0.1:1/rpc"
	logger := common.NewSilentLogger()

	_, err := NewManager(logger, cfg)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	cfg := testConfig(t)
	logger := common.NewSilentLogger()

	mgr, err := NewManager(logger, cfg)
	require.NoError(t, err)

	err = mgr.Close()
	assert.NoError(t, err)
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, isNotFoundError(nil))
	assert.False(t, isNotFoundError(errors.New("connection reset")))
	assert.True(t, isNotFoundError(errors.New("record not found")))
	assert.True(t, isNotFoundError(errors.New("Not Found")))
}
