package legacy

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceDSN(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		addr   string
		tls    string
	}{
		{"defaults", Source{Host: "db", User: "hrm", Password: "p@ss:word", Database: "hrmgo"}, "db:3306", "false"},
		{"tls required", Source{Host: "db", Port: 3307, User: "hrm", Database: "hrmgo", TLS: "required"}, "db:3307", "true"},
		{"named tls", Source{Host: "db", User: "hrm", Database: "hrmgo", TLS: "preferred"}, "db:3306", "preferred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.source.DSN()
			cfg, err := mysql.ParseDSN(dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.addr, cfg.Addr)
			assert.Equal(t, tt.source.User, cfg.User)
			assert.Equal(t, tt.source.Password, cfg.Passwd)
			assert.Equal(t, "hrmgo", cfg.DBName)
			assert.True(t, cfg.ParseTime)
			assert.Contains(t, dsn, "charset=utf8mb4")
			assert.Equal(t, tt.tls, cfg.TLSConfig)
		})
	}
}

type fakeRow []any

func (f fakeRow) Scan(dest ...any) error {
	if len(dest) != len(f) {
		return errors.New("column count mismatch")
	}
	for i, v := range f {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		case *sql.NullString:
			*d = v.(sql.NullString)
		case *sql.NullTime:
			*d = v.(sql.NullTime)
		case *sql.NullFloat64:
			*d = v.(sql.NullFloat64)
		case *sql.NullInt64:
			*d = v.(sql.NullInt64)
		default:
			return errors.New("unexpected destination")
		}
	}
	return nil
}

func TestScanAndImport(t *testing.T) {
	joined := time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC)
	row := fakeRow{
		int64(12), "EMP0012", " Ana Ruiz ", "Ana@Example.COM",
		sql.NullString{String: "555-1", Valid: true},
		sql.NullString{String: "Sales", Valid: true},
		sql.NullString{},
		sql.NullTime{Time: joined, Valid: true},
		sql.NullFloat64{Float64: 3100, Valid: true},
		sql.NullString{String: "ES91", Valid: true},
		sql.NullInt64{Int64: 1, Valid: true},
	}

	emp, err := scanEmployee(row)
	require.NoError(t, err)
	assert.True(t, emp.Active)

	got := emp.Import()
	require.NotNil(t, got.LegacyID)
	assert.Equal(t, int64(12), *got.LegacyID)
	assert.Equal(t, "Ana Ruiz", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "Sales", got.Designation)
	assert.Equal(t, "2019-03-04", got.DateOfJoining)
	require.NotNil(t, got.Salary)
	assert.Equal(t, 3100.0, *got.Salary)
	assert.Equal(t, "ES91", got.BankAccount)
	assert.Equal(t, "active", got.Status)
}

func TestImportOmitsMissingValues(t *testing.T) {
	got := Employee{ID: 3, Name: "Bo", Email: "bo@example.com", Salary: sql.NullFloat64{Float64: -5, Valid: true}}.Import()
	assert.Nil(t, got.Salary)
	assert.Empty(t, got.DateOfJoining)
	assert.Equal(t, "inactive", got.Status)

	batch := ImportBatch([]Employee{{ID: 1}, {ID: 2}})
	require.Len(t, batch, 2)
	assert.Equal(t, int64(2), *batch[1].LegacyID)
}
