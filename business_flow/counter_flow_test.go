package businessflow_test

import (
	"testing"

	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	testingutil "github.com/amirphl/dispupr-numbering/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		f := newFlows(testDB, nil)
		ctx := testingutil.CreateTestContext()

		res, err := f.counter.BastCounter(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Counter)
		assert.Equal(t, int64(1), res.NextSequence)

		_, err = f.bast.Generate(ctx, &dto.GenerateBastRequest{ProjectName: "P", BastDate: "2025-07-07"}, nil)
		require.NoError(t, err)

		res, err = f.counter.BastCounter(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Counter)
		assert.Equal(t, int64(2), res.NextSequence)

		// Reading never consumes a sequence
		gen, err := f.bast.Generate(ctx, &dto.GenerateBastRequest{ProjectName: "Q", BastDate: "2025-07-08"}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), gen.Sequence)

		cres, err := f.counter.ContractCounter(ctx, &dto.ContractCounterRequest{
			LocationCode: "622", WorkType: "BM-KONS", ProcurementType: "SPK", Year: 2025,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), cres.Counter)

		_, err = f.counter.ContractCounter(ctx, &dto.ContractCounterRequest{
			LocationCode: "999", WorkType: "BM", ProcurementType: "SP", Year: 2025,
		})
		assert.True(t, businessflow.IsValidationError(err))

		_, err = f.counter.BastCounter(ctx, 12)
		assert.True(t, businessflow.IsValidationError(err))
		return nil
	})
	require.NoError(t, err)
}
