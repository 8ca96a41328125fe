package sink

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cimflat/internal/db"
	"github.com/vvka-141/cimflat/internal/logging"
	"github.com/vvka-141/cimflat/internal/record"
	"github.com/vvka-141/cimflat/internal/table"
	testhelpers "github.com/vvka-141/cimflat/internal/testing"
)

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL(pgx.Identifier{"cim", "Breaker"}, []string{"xml_tag", `odd"name`})
	assert.Equal(t, `CREATE TABLE "cim"."Breaker" ("xml_tag" text, "odd""name" text)`, sql)
}

func TestCheckUnique(t *testing.T) {
	assert.NoError(t, checkUnique([]string{"a", "b"}))
	assert.Error(t, checkUnique([]string{"a", "b", "a"}))
}

func TestPostgresSink_WriteBeforeOpen(t *testing.T) {
	s := NewPostgres(nil, "public", logging.NewNullLogger())
	_, err := s.Write(context.Background(), breakerTable())
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, s.Close())
}

func TestPostgresSink_Integration(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pool := testhelpers.GetTestPool(t, connString)
	schema := testhelpers.UniqueSchema(t, pool)
	ctx := context.Background()

	cfg, err := db.ParseConnectionString(connString)
	require.NoError(t, err)
	s := NewPostgres(db.NewStandardConnector(cfg, nil), schema, logging.NewNullLogger())
	require.NoError(t, s.Open(ctx))
	defer s.Close()

	long := "Equipment.EquipmentContainer__Bay.Substation__Substation.Region__IdentifiedObject.name"
	r1 := record.New()
	r1.Set("xml_tag", "Breaker")
	r1.Set("declared_id", "_br1")
	r1.Set(long, "Region A")
	r2 := record.New()
	r2.Set("xml_tag", "Breaker")
	r2.Set("declared_id", "_br2")
	r2.Set("Switch.normalOpen", "")
	tbl := table.Build("Breaker", []*record.Record{r1, r2})

	report, err := s.Write(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, pgx.Identifier{schema, "Breaker"}.Sanitize(), report.Location)

	t.Run("absent cells are NULL, empty values are empty", func(t *testing.T) {
		var region, normalOpen *string
		err := pool.QueryRow(ctx,
			"SELECT "+pgx.Identifier{Identifier(long)}.Sanitize()+`, "Switch.normalOpen" FROM `+report.Location+` WHERE declared_id = '_br2'`,
		).Scan(&region, &normalOpen)
		require.NoError(t, err)
		assert.Nil(t, region)
		require.NotNil(t, normalOpen)
		assert.Equal(t, "", *normalOpen)
	})

	t.Run("long column name is shortened", func(t *testing.T) {
		var value string
		err := pool.QueryRow(ctx,
			"SELECT "+pgx.Identifier{Identifier(long)}.Sanitize()+" FROM "+report.Location+" WHERE declared_id = '_br1'",
		).Scan(&value)
		require.NoError(t, err)
		assert.Equal(t, "Region A", value)
	})

	t.Run("rewrite replaces the table", func(t *testing.T) {
		_, err := s.Write(ctx, table.Build("Breaker", []*record.Record{r1}))
		require.NoError(t, err)

		var n int
		require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM "+report.Location).Scan(&n))
		assert.Equal(t, 1, n)

		var columns string
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT string_agg(column_name, ',' ORDER BY ordinal_position) FROM information_schema.columns
			 WHERE table_schema = $1 AND table_name = 'Breaker'`, schema).Scan(&columns))
		assert.False(t, strings.Contains(columns, "Switch.normalOpen"))
	})
}
