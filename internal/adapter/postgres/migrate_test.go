package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/product-catalog/internal/mocks"
)

func TestMigrationFS_OrderedFiles(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/001_products.sql",
		"migrations/002_projects.sql",
		"migrations/003_processed_operations.sql",
	}, names)
}

func TestMigrate_LockFailureStopsBeforeTouchingDB(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockAdvisoryLocker(ctrl)
	lockErr := errors.New("lock unavailable")
	locker.EXPECT().WithLock(gomock.Any(), migrationLockKey, gomock.Any()).Return(lockErr)

	// A nil pool would panic if the migration body ran.
	err := Migrate(context.Background(), nil, locker)
	assert.ErrorIs(t, err, lockErr)
}
