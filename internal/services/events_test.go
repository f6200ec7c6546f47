package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEvents_AddressEventPayload(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, "user-events", mock.Anything, map[string]string{
		"event_type": EventAddressDeleted,
		"user_id":    testUserID.String(),
	}).Return("msg-1", nil)

	events := testEvents(t, pub)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events.now = func() time.Time { return fixed }

	events.addressEvent(context.Background(), EventAddressDeleted, testUserID, testAddressID)

	pub.AssertExpectations(t)
	var got UserEvent
	require.NoError(t, json.Unmarshal(pub.Calls[0].Arguments.Get(2).([]byte), &got))
	assert.Equal(t, EventAddressDeleted, got.EventType)
	assert.Equal(t, testUserID, got.UserID)
	require.NotNil(t, got.AddressID)
	assert.Equal(t, testAddressID, *got.AddressID)
	assert.True(t, fixed.Equal(got.OccurredAt))
}

func TestEvents_UserEventOmitsAddress(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, "user-events", mock.Anything, mock.Anything).Return("msg-1", nil)

	testEvents(t, pub).userEvent(context.Background(), EventUserCreated, testUserID)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(pub.Calls[0].Arguments.Get(2).([]byte), &raw))
	assert.NotContains(t, raw, "address_id")
	assert.Equal(t, EventUserCreated, raw["event_type"])
}

func TestEvents_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("channel closed"))

	NewEvents(pub, "user-events", zap.New(core)).userEvent(context.Background(), EventUserDeleted, testUserID)

	entries := logs.FilterMessage("publish user event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, EventUserDeleted, entries[0].ContextMap()["event_type"])
}

func TestEvents_NilPublisherAndReceiver(t *testing.T) {
	var nilEvents *Events
	assert.NotPanics(t, func() {
		nilEvents.userEvent(context.Background(), EventUserCreated, testUserID)
		NewEvents(nil, "user-events", nil).addressEvent(context.Background(), EventAddressCreated, testUserID, testAddressID)
	})
}
