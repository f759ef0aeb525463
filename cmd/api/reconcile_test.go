package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/services/cache"
)

func TestReconcileListPrintsNewestFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })

	ledger := cache.NewRedisLedger(client.Raw())
	for _, tx := range []string{"tx1", "tx2", "tx3"} {
		require.NoError(t, ledger.Record(context.Background(), models.ReconciliationEntry{
			TransactionID: tx,
			WorkID:        "w1",
			Amount:        "100.00",
			RecordedAt:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		}))
	}

	var out bytes.Buffer
	cmd := reconcileCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--redis-addr", mr.Addr(), "--limit", "2"})
	require.NoError(t, cmd.Execute())

	var entries []models.ReconciliationEntry
	require.NoError(t, jsoniter.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "tx3", entries[0].TransactionID)
	assert.Equal(t, "tx2", entries[1].TransactionID)
}

func TestReconcileListEmptyLedger(t *testing.T) {
	mr := miniredis.RunT(t)

	var out bytes.Buffer
	cmd := reconcileCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--redis-addr", mr.Addr()})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "[]\n", out.String())
}

func TestReconcileListRequiresRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cmd := reconcileCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})
	assert.ErrorContains(t, cmd.Execute(), "REDIS_ADDR is required")
}

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, newLogger("debug", "production").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("", "production").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("loud", "development").GetLevel())
}
