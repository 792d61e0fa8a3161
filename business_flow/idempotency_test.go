package businessflow_test

import (
	"testing"

	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	testingutil "github.com/amirphl/dispupr-numbering/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsIdempotentPerKey(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		store := newMemoryIdempotencyStore()
		f := newFlows(testDB, store)
		ctx := testingutil.CreateTestContext()

		metadata := businessflow.NewClientMetadata()
		metadata.SetIdempotencyKey("form-submit-1")

		req := &dto.GenerateBastRequest{ProjectName: "Jembatan", BastDate: "2025-08-17"}
		first, err := f.bast.Generate(ctx, req, metadata)
		require.NoError(t, err)

		replay, err := f.bast.Generate(ctx, req, metadata)
		require.NoError(t, err)
		assert.Equal(t, first.BastNumber, replay.BastNumber)
		assert.Equal(t, first.ID, replay.ID)

		v, err := f.counters.GetBast(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		t.Run("KeysAreScopedPerDocument", func(t *testing.T) {
			res, err := f.contract.Generate(ctx, contractRequest("2025-08-17", "621", "BM", "SP"), metadata)
			require.NoError(t, err)
			assert.Equal(t, "621/DISPUPR/BM/SP/01/VIII/2025", res.ContractNumber)
		})

		t.Run("InProgress", func(t *testing.T) {
			store.hold("bast:form-submit-2")
			metadata := businessflow.NewClientMetadata()
			metadata.SetIdempotencyKey("form-submit-2")

			_, err := f.bast.Generate(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRequestInProgress(err))
		})

		t.Run("RejectedRequestDoesNotTakeKey", func(t *testing.T) {
			metadata := businessflow.NewClientMetadata()
			metadata.SetIdempotencyKey("form-submit-3")

			_, err := f.bast.Generate(ctx, &dto.GenerateBastRequest{ProjectName: "", BastDate: "2025-08-17"}, metadata)
			require.Error(t, err)

			res, err := f.bast.Generate(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, "02/BAST-BM/VIII/2025", res.BastNumber)
		})

		return nil
	})
	require.NoError(t, err)
}
