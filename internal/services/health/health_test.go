package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWithoutDatabase(t *testing.T) {
	st := NewService(nil, "v1").Check(context.Background())
	assert.True(t, st.OK)
	assert.Equal(t, "memory", st.Database)
	assert.Equal(t, "v1", st.Version)
}

func TestCheckPingsDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()
	st := NewService(sqlDB, "").Check(context.Background())
	assert.True(t, st.OK)
	assert.Equal(t, "ok", st.Database)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	st = NewService(sqlDB, "").Check(context.Background())
	assert.False(t, st.OK)
	assert.Equal(t, "unreachable", st.Database)
	require.NoError(t, mock.ExpectationsWereMet())
}
