package migration

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := EmbeddedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20260301090000_create_clients",
		"20260301090100_create_transaction_events",
	}, names)

	for _, name := range names {
		_, err := embedded.ReadFile(EmbeddedDir + "/" + name + ".down.sql")
		assert.NoError(t, err, "%s has no down migration", name)
	}
}

func TestEmbeddedMigrations_Source(t *testing.T) {
	src, err := iofs.New(embedded, EmbeddedDir)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301090000), first)

	next, err := src.Next(first)
	require.NoError(t, err)

	r, _, err := src.ReadUp(next)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS transaction_events")
	assert.Contains(t, sql, "idx_transaction_events_client_fecha")
	for _, column := range []string{"cliente_id", "fecha", "borrado", "total_venta", "monto_pago"} {
		assert.True(t, strings.Contains(sql, column), "missing column %s", column)
	}
}
