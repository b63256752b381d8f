package collection_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/adapter/memory"
	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	"github.com/promptlab/promptlab/internal/domain/event"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	collectionsvc "github.com/promptlab/promptlab/internal/service/collection"
)

func newSvc(t *testing.T) (*collectionsvc.Service, *memory.Store, *memory.Bus) {
	t.Helper()
	store := memory.NewStore()
	bus := memory.NewBus()
	svc := collectionsvc.NewService(store.Collections(), store, bus)
	return svc, store, bus
}

func TestCreateAndGet(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "agents", "agent system prompts")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "agents", got.Name)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domaincollection.ErrNotFound)
}

func TestDelete_DetachesPrompts(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "agents", "")
	require.NoError(t, err)

	p := domainprompt.New("p", "x", "", &c.ID)
	_, err = store.Create(ctx, p)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))

	_, err = svc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domaincollection.ErrNotFound)

	// The prompt survives, detached.
	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CollectionID)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newSvc(t)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domaincollection.ErrNotFound)
}

func TestDelete_PublishesEvent(t *testing.T) {
	svc, _, bus := newSvc(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "agents", "")
	require.NoError(t, err)

	var got []event.Event
	_, err = bus.Subscribe(ctx, event.ChannelCollection, func(_ context.Context, e event.Event) {
		got = append(got, e)
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	require.Len(t, got, 1)
	assert.Equal(t, event.TypeCollectionDeleted, got[0].Type)
	assert.Equal(t, c.ID, got[0].EntityID)
}
