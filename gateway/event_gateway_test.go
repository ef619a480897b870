package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"permanode/domain"
	"permanode/mocks"
)

func TestEventGateway_Disabled(t *testing.T) {
	gw := NewEventGateway(nil)
	assert.False(t, gw.Enabled())
	gw.MessageStored(context.Background(), "mainnet", domain.MessageID{})
	gw.MilestoneLogged(context.Background(), "mainnet", 1, "1to2.log.zst")
}

func TestEventGateway_MilestoneSynced(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockStreamPort(ctrl)
	ms := &domain.Milestone{Index: 42, Timestamp: time.Unix(1000, 0)}

	stream.EXPECT().
		Publish(gomock.Any(), domain.StreamKeyMilestones, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.StreamKey, e *domain.Event) (string, error) {
			assert.Equal(t, domain.EventTypeMilestoneSynced, e.EventType)
			assert.Equal(t, "mainnet", e.Source)
			assert.Equal(t, "42", e.Metadata["milestone_index"])

			var payload map[string]any
			require.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.EqualValues(t, 42, payload["milestone_index"])
			assert.EqualValues(t, 7, payload["messages"])
			assert.EqualValues(t, 1000, payload["timestamp"])
			return "1-0", nil
		})

	gw := NewEventGateway(stream)
	assert.True(t, gw.Enabled())
	gw.MilestoneSynced(context.Background(), "mainnet", ms, 7)
}

func TestEventGateway_PublishFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockStreamPort(ctrl)
	stream.EXPECT().
		Publish(gomock.Any(), domain.StreamKeyMessages, gomock.Any()).
		Return("", errors.New("redis down"))

	NewEventGateway(stream).MessageStored(context.Background(), "mainnet", domain.MessageID{1})
}
