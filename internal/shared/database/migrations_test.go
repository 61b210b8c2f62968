package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"003_permits.sql":    {Data: []byte("SELECT 1;")},
		"001_extensions.sql": {Data: []byte("SELECT 1;")},
		"README.md":          {Data: []byte("notes")},
		"002_catalog.sql":    {Data: []byte("SELECT 1;")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_extensions.sql", "002_catalog.sql", "003_permits.sql"}, files)
}
