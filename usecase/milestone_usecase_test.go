package usecase

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"permanode/domain"
	"permanode/metrics"
	"permanode/mocks"
	apperrors "permanode/utils/errors"
)

type milestoneMocks struct {
	store  *mocks.MockKeyspaceStore
	node   *mocks.MockNodeAPI
	events *mocks.MockEventPublisher
}

func newMilestoneUsecase(t *testing.T) (*MilestoneUsecase, milestoneMocks) {
	ctrl := gomock.NewController(t)
	m := milestoneMocks{
		store:  mocks.NewMockKeyspaceStore(ctrl),
		node:   mocks.NewMockNodeAPI(ctrl),
		events: mocks.NewMockEventPublisher(ctrl),
	}
	m.store.EXPECT().Keyspace().Return("mainnet").AnyTimes()
	return NewMilestoneUsecase(m.store, m.node, m.events), m
}

func TestMilestoneUsecase_CompleteMilestone(t *testing.T) {
	uc, m := newMilestoneUsecase(t)
	ms := newTestMilestone(10)
	data := &domain.MilestoneData{MilestoneIndex: 10, Milestone: ms, Messages: make([]*domain.FullMessage, 3)}

	gomock.InOrder(
		m.store.EXPECT().InsertMilestone(gomock.Any(), ms).Return(nil),
		m.store.EXPECT().MarkSynced(gomock.Any(), uint32(10)).Return(nil),
		m.events.EXPECT().MilestoneSynced(gomock.Any(), "mainnet", ms, 3),
	)
	solidified := testutil.ToFloat64(metrics.MilestonesSolidified)
	stored := testutil.ToFloat64(metrics.MessagesStored.WithLabelValues("mainnet", "milestone"))

	require.NoError(t, uc.CompleteMilestone(context.Background(), data))
	assert.Equal(t, solidified+1, testutil.ToFloat64(metrics.MilestonesSolidified))
	assert.Equal(t, stored, testutil.ToFloat64(metrics.MessagesStored.WithLabelValues("mainnet", "milestone")))
}

func TestMilestoneUsecase_CompleteMilestoneWithoutMilestone(t *testing.T) {
	uc, _ := newMilestoneUsecase(t)
	err := uc.CompleteMilestone(context.Background(), &domain.MilestoneData{MilestoneIndex: 3})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestMilestoneUsecase_MarkLogged(t *testing.T) {
	uc, m := newMilestoneUsecase(t)
	m.store.EXPECT().MarkLogged(gomock.Any(), uint32(4)).Return(nil)
	m.events.EXPECT().MilestoneLogged(gomock.Any(), "mainnet", uint32(4), "4to5.part")

	before := testutil.ToFloat64(metrics.MilestonesArchived)

	require.NoError(t, uc.MarkLogged(context.Background(), 4, "4to5.part"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MilestonesArchived))
}

func TestMilestoneUsecase_LoadMilestoneData(t *testing.T) {
	uc, m := newMilestoneUsecase(t)
	a := newTestMessage(t, 1, nil)
	b := newTestMessage(t, 2, nil)
	ms := newTestMilestone(8)

	m.store.EXPECT().GetMilestone(gomock.Any(), uint32(8)).Return(ms, nil)
	m.store.EXPECT().GetReferenced(gomock.Any(), uint32(8)).Return([]domain.MessageID{b.MessageID, a.MessageID}, nil)
	m.store.EXPECT().GetMessage(gomock.Any(), a.MessageID).Return(a, nil)
	m.store.EXPECT().GetMessage(gomock.Any(), b.MessageID).Return(b, nil)

	data, err := uc.LoadMilestoneData(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), data.MilestoneIndex)
	require.Len(t, data.Messages, 2)
	assert.True(t, data.Messages[0].MessageID.Less(data.Messages[1].MessageID))
}

func TestMilestoneUsecase_FetchMessage(t *testing.T) {
	stored := newTestMessage(t, 1, nil)
	stored.Metadata = &domain.MessageMetadata{MessageID: stored.MessageID}
	remote := newTestMessage(t, 2, nil)
	remote.Metadata = &domain.MessageMetadata{MessageID: remote.MessageID}
	notFound := apperrors.NewMessageNotFoundError("driver", "scylla", "GetMessage", nil)

	t.Run("from storage", func(t *testing.T) {
		uc, m := newMilestoneUsecase(t)
		m.store.EXPECT().GetMessage(gomock.Any(), stored.MessageID).Return(stored, nil)

		got, err := uc.FetchMessage(context.Background(), stored.MessageID)
		require.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("from node and stored", func(t *testing.T) {
		uc, m := newMilestoneUsecase(t)
		m.store.EXPECT().GetMessage(gomock.Any(), remote.MessageID).Return(nil, notFound)
		m.node.EXPECT().FetchMessage(gomock.Any(), remote.MessageID).Return(remote, nil)
		m.store.EXPECT().InsertMessage(gomock.Any(), remote.MessageID, gomock.Any(), remote.Raw).Return(nil)
		m.store.EXPECT().InsertMetadata(gomock.Any(), remote.Metadata).Return(nil)

		got, err := uc.FetchMessage(context.Background(), remote.MessageID)
		require.NoError(t, err)
		assert.Same(t, remote, got)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		uc, m := newMilestoneUsecase(t)
		down := apperrors.NewStorageUnavailableError("driver", "scylla", "GetMessage", nil, nil)
		m.store.EXPECT().GetMessage(gomock.Any(), remote.MessageID).Return(nil, down)

		_, err := uc.FetchMessage(context.Background(), remote.MessageID)
		assert.True(t, apperrors.IsStorageError(err))
	})
}

func TestMilestoneUsecase_SyncData(t *testing.T) {
	uc, m := newMilestoneUsecase(t)
	r := domain.SyncRange{From: 1, To: 4}
	m.store.EXPECT().GetSyncRecords(gomock.Any(), r).Return([]domain.SyncRecord{
		{MilestoneIndex: 2, SyncedBy: marker()},
	}, nil)

	data, err := uc.SyncData(context.Background(), r)
	require.NoError(t, err)
	got, ok := data.TakeLowestUncomplete()
	require.True(t, ok)
	assert.Equal(t, domain.Range{Start: 1, End: 4}, got)
}
