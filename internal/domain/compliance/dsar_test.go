package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDsarRequest(t *testing.T) {
	tenantID := uuid.New()
	receivedAt := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("due thirty days from receipt", func(t *testing.T) {
		request, err := NewDsarRequest(tenantID, "subject-1", RequestAccess, receivedAt)
		require.NoError(t, err)

		assert.Equal(t, DsarReceived, request.Status)
		assert.Equal(t, time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC), request.DueDate)
	})

	t.Run("accepts every request type", func(t *testing.T) {
		for _, rt := range AllRequestTypes() {
			_, err := NewDsarRequest(tenantID, "subject-1", rt, receivedAt)
			assert.NoError(t, err, "request type %s", rt)
		}
	})

	t.Run("rejects unknown request type", func(t *testing.T) {
		_, err := NewDsarRequest(tenantID, "subject-1", RequestType("deletion"), receivedAt)
		assert.Error(t, err)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := NewDsarRequest(tenantID, "", RequestAccess, receivedAt)
		assert.Error(t, err)
	})
}

func TestDsarRequest_Transitions(t *testing.T) {
	tenantID := uuid.New()
	receivedAt := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	newRequest := func(t *testing.T) *DsarRequest {
		request, err := NewDsarRequest(tenantID, "subject-1", RequestErasure, receivedAt)
		require.NoError(t, err)
		return request
	}

	t.Run("received to in progress to completed", func(t *testing.T) {
		request := newRequest(t)
		require.NoError(t, request.Start())
		assert.Equal(t, DsarInProgress, request.Status)

		resolvedAt := receivedAt.AddDate(0, 0, 12)
		require.NoError(t, request.Complete("records erased", resolvedAt))
		assert.Equal(t, DsarCompleted, request.Status)
		require.NotNil(t, request.ResolvedAt)
		assert.Equal(t, resolvedAt, *request.ResolvedAt)
		assert.Equal(t, "records erased", request.Resolution)
	})

	t.Run("cannot complete without starting", func(t *testing.T) {
		request := newRequest(t)
		assert.Error(t, request.Complete("done", receivedAt))
	})

	t.Run("reject allowed from received and in progress", func(t *testing.T) {
		request := newRequest(t)
		require.NoError(t, request.Reject("identity not verified", receivedAt.AddDate(0, 0, 2)))
		assert.Equal(t, DsarRejected, request.Status)

		started := newRequest(t)
		require.NoError(t, started.Start())
		require.NoError(t, started.Reject("manifestly unfounded", receivedAt.AddDate(0, 0, 5)))
	})

	t.Run("terminal states admit no transitions", func(t *testing.T) {
		request := newRequest(t)
		require.NoError(t, request.Start())
		require.NoError(t, request.Complete("done", receivedAt.AddDate(0, 0, 3)))

		assert.Error(t, request.Start())
		assert.Error(t, request.Complete("again", receivedAt.AddDate(0, 0, 4)))
		assert.Error(t, request.Reject("late rejection", receivedAt.AddDate(0, 0, 4)))
	})
}

func TestDsarRequest_IsOverdue(t *testing.T) {
	tenantID := uuid.New()
	receivedAt := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	request, err := NewDsarRequest(tenantID, "subject-1", RequestAccess, receivedAt)
	require.NoError(t, err)

	t.Run("open request before deadline", func(t *testing.T) {
		assert.False(t, request.IsOverdue(receivedAt.AddDate(0, 0, 29)))
		assert.Equal(t, 1, request.DaysRemaining(receivedAt.AddDate(0, 0, 29)))
	})

	t.Run("open request past deadline", func(t *testing.T) {
		late := receivedAt.AddDate(0, 0, 31)
		assert.True(t, request.IsOverdue(late))
		assert.Negative(t, request.DaysRemaining(late))
	})

	t.Run("closed request is never overdue", func(t *testing.T) {
		require.NoError(t, request.Start())
		require.NoError(t, request.Complete("done", receivedAt.AddDate(0, 0, 40)))
		assert.False(t, request.IsOverdue(receivedAt.AddDate(0, 0, 60)))
	})
}
