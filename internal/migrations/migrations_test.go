package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"tracker/internal/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrations.Source(), ".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Greater(t, ups, 0)
	assert.Equal(t, ups, downs)
}

func TestSource_NotificationsHaveNoRelatedForeignKey(t *testing.T) {
	data, err := fs.ReadFile(migrations.Source(), "000001_init.up.sql")
	require.NoError(t, err)

	sql := string(data)
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS notifications")
	require.GreaterOrEqual(t, start, 0)
	table := sql[start:]
	table = table[:strings.Index(table, ");")]

	assert.Contains(t, table, "related_id   UUID,")
	assert.Equal(t, 1, strings.Count(table, "REFERENCES"), "only user_id may reference another table")
}
