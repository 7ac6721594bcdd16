package archive

import (
	"context"
	"testing"
	"time"

	"gokaizen/domain/study"
	"gokaizen/internal/migration"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func archivedDataset(t *testing.T, createdAt time.Time, seed *int64) *study.Dataset {
	t.Helper()
	before, err := study.NewSample(study.GroupBefore, []float64{8, 9, 10})
	require.NoError(t, err)
	after, err := study.NewSample(study.GroupAfter, []float64{6, 7})
	require.NoError(t, err)

	params := study.DefaultSimulationParams()
	params.Seed = seed
	return &study.Dataset{
		ID:            uuid.New(),
		Before:        before,
		After:         after,
		Params:        &params,
		Seed:          seed,
		EffectiveSeed: 1234,
		Source:        "simulation",
		CreatedAt:     createdAt,
	}
}

func TestRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	seed := int64(42)
	older := archivedDataset(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), &seed)
	newer := archivedDataset(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), nil)

	require.NoError(t, repo.SaveDataset(ctx, older))
	require.NoError(t, repo.SaveDataset(ctx, newer))

	report := &study.AnalysisReport{ExecutiveSummary: "ok"}
	report.WelchTTest.IsSignificant = true
	report.CohensD.CohensD = 1.3
	require.NoError(t, repo.SaveReport(ctx, older.ID, report))
	require.NoError(t, repo.SaveReport(ctx, older.ID, report))

	items, err := repo.ListDatasets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, newer.ID, items[0].ID)
	assert.Nil(t, items[0].Seed)
	assert.Equal(t, 0, items[0].ReportCount)

	assert.Equal(t, older.ID, items[1].ID)
	require.NotNil(t, items[1].Seed)
	assert.Equal(t, int64(42), *items[1].Seed)
	assert.Equal(t, 3, items[1].BeforeCount)
	assert.Equal(t, 2, items[1].AfterCount)
	assert.Equal(t, int64(1234), items[1].EffectiveSeed)
	assert.Equal(t, 2, items[1].ReportCount)
	require.NotNil(t, items[1].Params)
	assert.Equal(t, 8.5, items[1].Params.BeforeMean)
	assert.True(t, items[1].CreatedAt.Equal(older.CreatedAt))
}

func TestRepository_ListLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveDataset(ctx, archivedDataset(t, base.Add(time.Duration(i)*time.Hour), nil)))
	}

	items, err := repo.ListDatasets(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))

	items, err = repo.ListDatasets(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestMigrationIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM kaizen_datasets"))
	assert.Zero(t, count)
}
