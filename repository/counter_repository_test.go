package repository_test

import (
	"sync"
	"testing"

	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/repository"
	testingutil "github.com/amirphl/dispupr-numbering/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCounterRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("GetBastCreatesAbsentRowAtZero", func(t *testing.T) {
			v, err := repo.GetBast(ctx, 2030)
			require.NoError(t, err)
			assert.Equal(t, int64(0), v)

			var row models.BastCounter
			require.NoError(t, testDB.DB.Where("year = ?", 2030).First(&row).Error)
			assert.Equal(t, int64(0), row.Counter)
		})

		t.Run("IncrementBastIsSequential", func(t *testing.T) {
			for want := int64(1); want <= 3; want++ {
				got, err := repo.IncrementBast(ctx, 2025)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			v, err := repo.GetBast(ctx, 2025)
			require.NoError(t, err)
			assert.Equal(t, int64(3), v)
		})

		t.Run("IncrementAfterGet", func(t *testing.T) {
			_, err := repo.GetBast(ctx, 2031)
			require.NoError(t, err)

			got, err := repo.IncrementBast(ctx, 2031)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got)
		})

		t.Run("BastYearsAreIndependent", func(t *testing.T) {
			got, err := repo.IncrementBast(ctx, 2026)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got)

			v, err := repo.GetBast(ctx, 2025)
			require.NoError(t, err)
			assert.Equal(t, int64(3), v)
		})

		t.Run("ContractScopesAreIndependent", func(t *testing.T) {
			a := models.ContractScope{LocationCode: "621", WorkType: "BM", ProcurementType: "SP", Year: 2025}
			b := models.ContractScope{LocationCode: "621", WorkType: "BM", ProcurementType: "SPK", Year: 2025}
			c := models.ContractScope{LocationCode: "621", WorkType: "BM", ProcurementType: "SP", Year: 2026}

			for want := int64(1); want <= 2; want++ {
				got, err := repo.IncrementContract(ctx, a)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			got, err := repo.IncrementContract(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, int64(1), got)

			v, err := repo.GetContract(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, int64(0), v)

			v, err = repo.GetContract(ctx, a)
			require.NoError(t, err)
			assert.Equal(t, int64(2), v)

			var rows int64
			require.NoError(t, testDB.DB.Model(&models.ContractCounter{}).Count(&rows).Error)
			assert.Equal(t, int64(3), rows)
		})

		t.Run("ConcurrentIncrementsNeverShareAValue", func(t *testing.T) {
			const workers = 20
			var wg sync.WaitGroup
			results := make(chan int64, workers)
			errs := make(chan error, workers)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					v, err := repo.IncrementBast(ctx, 2040)
					if err != nil {
						errs <- err
						return
					}
					results <- v
				}()
			}
			wg.Wait()
			close(results)
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			seen := make(map[int64]bool, workers)
			for v := range results {
				assert.False(t, seen[v], "value %d issued twice", v)
				seen[v] = true
			}
			assert.Len(t, seen, workers)
			for v := int64(1); v <= workers; v++ {
				assert.True(t, seen[v], "value %d missing", v)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
