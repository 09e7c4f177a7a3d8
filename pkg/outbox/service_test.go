package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gmchicks/storefront-backend/pkg/db/dbtest"
	"github.com/gmchicks/storefront-backend/pkg/db/models"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/outbox/payloads"
)

func TestEmitWritesEnvelope(t *testing.T) {
	client, conn := dbtest.Client(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "customer"}
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          payloads.OrderPlacedEvent{OrderID: orderID, OrderNumber: "GM-20260101-ABCDEF"},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)
	assert.Nil(t, rows[0].PublishedAt)

	env, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Actor)
	assert.Equal(t, actor.UserID, env.Actor.UserID)

	var data payloads.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "GM-20260101-ABCDEF", data.OrderNumber)
}

func TestEmitRequiresTransactionAndKnownTypes(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder})
	assert.Error(t, err)

	_, conn := dbtest.Client(t)
	err = svc.Emit(context.Background(), conn, DomainEvent{EventType: "bogus", AggregateType: enums.AggregateOrder})
	assert.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	_, conn := dbtest.Client(t)
	repo := NewRepository(conn)

	fresh := models.OutboxEvent{EventType: enums.EventVisitBooked, AggregateType: enums.AggregateVisit, AggregateID: uuid.New(), Payload: "{}"}
	exhausted := models.OutboxEvent{EventType: enums.EventVisitBooked, AggregateType: enums.AggregateVisit, AggregateID: uuid.New(), Payload: "{}", AttemptCount: 10}
	require.NoError(t, repo.Insert(conn, fresh))
	require.NoError(t, repo.Insert(conn, exhausted))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	id := rows[0].ID

	require.NoError(t, repo.MarkFailedTx(conn, id, assert.AnError))
	var row models.OutboxEvent
	require.NoError(t, conn.First(&row, "id = ?", id).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)

	require.NoError(t, repo.MarkPublishedTx(conn, id))
	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	deleted, err := repo.DeletePublishedBefore(context.Background(), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestEmitStampsOccurredAtFromClock(t *testing.T) {
	client, conn := dbtest.Client(t)
	svc := NewService(NewRepository(conn), nil)
	fixed := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventVisitBooked,
			AggregateType: enums.AggregateVisit,
			AggregateID:   uuid.New(),
			Data:          map[string]string{"visit_date": "2026-03-02"},
		})
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row).Error)
	env, err := DecodeEnvelope(row.Payload)
	require.NoError(t, err)
	assert.True(t, env.OccurredAt.Equal(fixed))
}

func TestDecodeEnvelopeRejectsIncompletePayloads(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":   "{",
		"no id":      `{"version":1,"data":{}}`,
		"no version": `{"eventId":"abc","data":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope(payload)
			assert.Error(t, err)
		})
	}
}
