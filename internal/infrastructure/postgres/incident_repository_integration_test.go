//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/valueobject"
	"github.com/bibbank/breachrisk/internal/infrastructure/postgres"
	"github.com/bibbank/breachrisk/pkg/testutil"
)

func TestIncidentRepository(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)

	repo := postgres.NewIncidentRepository(pc.Pool)
	date := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

	n, err := repo.Save(ctx,
		model.MustIncidentRecord("TechCorp", valueobject.IncidentHacking, date, 2_500_000),
		model.MustIncidentRecord("techcorp labs", valueobject.IncidentHacking, date, 40_000),
		model.MustIncidentRecord("TechCorp", valueobject.IncidentPhishing, date, 1000),
		model.MustIncidentRecord("100%Secure", valueobject.IncidentHacking, date, 5),
	)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "TechCorp", all[0].Organization())
	assert.Equal(t, date, all[0].Date())
	assert.Equal(t, int64(2_500_000), all[0].RecordsExposed())

	matching, err := repo.FetchMatching(ctx, "TECHCORP", valueobject.IncidentHacking)
	require.NoError(t, err)
	assert.Len(t, matching, 2)

	// Wildcards in the query are literal.
	matching, err = repo.FetchMatching(ctx, "%", valueobject.IncidentHacking)
	require.NoError(t, err)
	require.Len(t, matching, 1)
	assert.Equal(t, "100%Secure", matching[0].Organization())

	n, err = repo.Save(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIncidentRepository_SaveIsAtomic(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	repo := postgres.NewIncidentRepository(pc.Pool)

	valid := model.MustIncidentRecord("TechCorp", valueobject.IncidentHacking, time.Now(), 10)
	_, err := pc.Pool.Exec(ctx, `ALTER TABLE incidents ADD CONSTRAINT small CHECK (records_exposed < 100)`)
	require.NoError(t, err)
	big := model.MustIncidentRecord("TechCorp", valueobject.IncidentHacking, time.Now(), 1000)

	_, err = repo.Save(ctx, valid, big)
	require.Error(t, err)

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMigrations_DownThenUp(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	repo := postgres.NewIncidentRepository(pc.Pool)

	_, err := repo.Save(ctx, model.MustIncidentRecord("TechCorp", valueobject.IncidentHacking, time.Now(), 10))
	require.NoError(t, err)

	pc.MigrateDown(t, postgres.Migrations, postgres.MigrationsDir)
	_, err = repo.FetchAll(ctx)
	require.Error(t, err)

	pc.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
