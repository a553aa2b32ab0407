package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/paparr/paparr/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConcurrentWrites(t *testing.T) {
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "test.db")

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	err = db.NewRaw("PRAGMA journal_mode").Scan(context.Background(), &mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)

	_, err = db.Exec(`CREATE TABLE writes (id INTEGER PRIMARY KEY AUTOINCREMENT, value TEXT NOT NULL)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := db.Exec("INSERT INTO writes (value) VALUES (?)", fmt.Sprintf("%d-%d", w, i)); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected write error: %v", err)
	}

	var count int
	err = db.NewRaw("SELECT count(*) FROM writes").Scan(context.Background(), &count)
	require.NoError(t, err)
	assert.Equal(t, 100, count)
}

func TestNew_InMemory(t *testing.T) {
	db, err := New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	var fk int
	err = db.NewRaw("PRAGMA foreign_keys").Scan(context.Background(), &fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk)
}

type plainDriver struct {
	driver.Driver
	opened []string
}

func (d *plainDriver) Open(dsn string) (driver.Conn, error) {
	d.opened = append(d.opened, dsn)
	return nil, nil
}

func TestOpenConnector_FallsBackForPlainDriver(t *testing.T) {
	drv := &plainDriver{}

	connector, err := openConnector(drv, "paparr.db")
	require.NoError(t, err)
	assert.Same(t, drv, connector.Driver())

	_, err = connector.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"paparr.db"}, drv.opened)
}

func TestNew_UsesSQLiteShimDriver(t *testing.T) {
	db, err := New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	var one int
	err = db.NewRaw("SELECT 1").Scan(context.Background(), &one)
	require.NoError(t, err)
	assert.Equal(t, 1, one)
}
