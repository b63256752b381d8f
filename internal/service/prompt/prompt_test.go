package prompt_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/adapter/memory"
	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	"github.com/promptlab/promptlab/internal/domain/event"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"
)

func newSvc(t *testing.T) (*promptsvc.Service, *memory.Store, *memory.Bus) {
	t.Helper()
	store := memory.NewStore()
	bus := memory.NewBus()
	svc := promptsvc.NewService(store, store.Versions(), store, store.Collections(), store, bus)
	return svc, store, bus
}

func strptr(s string) *string { return &s }

func TestCreate_StartsAtVersionOne(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{
		Title:   "summarizer",
		Content: "Summarize: {{input}}",
		Tags:    []string{"NLP", "Summarization"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, []string{"nlp", "summarization"}, p.Tags)

	metas, err := store.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 1, metas[0].Version)
}

func TestCreate_UnknownCollection(t *testing.T) {
	svc, _, _ := newSvc(t)
	colID := uuid.New()

	_, err := svc.Create(context.Background(), promptsvc.CreateParams{
		Title:        "p",
		Content:      "x",
		CollectionID: &colID,
	})
	assert.ErrorIs(t, err, domaincollection.ErrNotFound)
}

func TestCreate_PublishesEvent(t *testing.T) {
	svc, _, bus := newSvc(t)
	ctx := context.Background()

	var got []event.Event
	_, err := bus.Subscribe(ctx, event.ChannelPrompt, func(_ context.Context, e event.Event) {
		got = append(got, e)
	})
	require.NoError(t, err)

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "x"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, event.TypePromptCreated, got[0].Type)
	assert.Equal(t, p.ID, got[0].EntityID)
}

func TestUpdate_ContentChangeBumpsVersion(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{Content: strptr("v2")})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "v2", updated.Content)

	metas, err := store.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestUpdate_IdenticalContentKeepsVersion(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{Content: strptr("v1")})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)

	metas, err := store.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestUpdate_MetadataOnlyKeepsVersion(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{
		Title:       strptr("renamed"),
		Description: strptr("now with a description"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "v1", updated.Content)
}

func TestUpdate_TagOnlyKeepsVersion(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1", Tags: []string{"old"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{Tags: []string{"New", "Other"}})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.Equal(t, []string{"new", "other"}, updated.Tags)
}

func TestUpdate_ClearCollection(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, domaincollection.New("agents", ""))
	require.NoError(t, err)

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "x", CollectionID: &col.ID})
	require.NoError(t, err)
	require.NotNil(t, p.CollectionID)

	updated, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{ClearCollection: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CollectionID)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.Update(context.Background(), uuid.New(), domainprompt.UpdateParams{Content: strptr("x")})
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

func TestRevert_CopiesForward(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, p.ID, domainprompt.UpdateParams{Content: strptr("v2")})
	require.NoError(t, err)

	reverted, err := svc.Revert(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "v1", reverted.Content)
	assert.Equal(t, 3, reverted.Version)

	// History is append-only: the old entry is untouched and the copy gets
	// the next number.
	metas, err := store.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	for i, m := range metas {
		assert.Equal(t, i+1, m.Version)
	}

	v3, err := store.GetVersion(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "v1", v3.Content)
}

func TestRevert_ToCurrentVersionConflicts(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Revert(ctx, p.ID, 1)
	assert.ErrorIs(t, err, domainprompt.ErrNoOpRevert)
}

func TestRevert_InvalidNumber(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.Revert(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, domainprompt.ErrInvalidVersion)
}

func TestRevert_UnknownVersion(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Revert(ctx, p.ID, 9)
	assert.ErrorIs(t, err, domainprompt.ErrVersionNotFound)
}

func TestDelete_Cascades(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v1", Tags: []string{"sql"}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
	_, err = svc.ListVersions(ctx, p.ID)
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)

	// The vocabulary outlives its prompts.
	tags, err := store.ResolveOrCreate(ctx, []string{"sql"})
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newSvc(t)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

func TestList_TagFilterIsIntersection(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	both, err := svc.Create(ctx, promptsvc.CreateParams{Title: "both", Content: "x", Tags: []string{"sql", "review"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, promptsvc.CreateParams{Title: "only-sql", Content: "y", Tags: []string{"sql"}})
	require.NoError(t, err)

	got, err := svc.List(ctx, domainprompt.ListFilters{Tags: []string{"SQL", "Review"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, both.ID, got[0].ID)
}

func TestList_UnknownTagIsEmptyNotError(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "x", Tags: []string{"sql"}})
	require.NoError(t, err)

	got, err := svc.List(ctx, domainprompt.ListFilters{Tags: []string{"sql", "never-used"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_AllFiltersCombineWithAnd(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, domaincollection.New("agents", ""))
	require.NoError(t, err)

	want, err := svc.Create(ctx, promptsvc.CreateParams{
		Title: "code reviewer", Content: "review this diff", CollectionID: &col.ID, Tags: []string{"review"},
	})
	require.NoError(t, err)
	// Matches search and tag but not collection.
	_, err = svc.Create(ctx, promptsvc.CreateParams{Title: "review helper", Content: "z", Tags: []string{"review"}})
	require.NoError(t, err)
	// Matches collection and tag but not search.
	_, err = svc.Create(ctx, promptsvc.CreateParams{Title: "planner", Content: "plan", CollectionID: &col.ID, Tags: []string{"review"}})
	require.NoError(t, err)

	got, err := svc.List(ctx, domainprompt.ListFilters{
		CollectionID: &col.ID,
		Search:       "review",
		Tags:         []string{"review"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
}

func TestConcurrentUpdates_HistoryStaysGapless(t *testing.T) {
	svc, store, _ := newSvc(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, promptsvc.CreateParams{Title: "p", Content: "v0"})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.Update(ctx, p.ID, domainprompt.UpdateParams{
				Content: strptr(fmt.Sprintf("content-%d", i)),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	metas, err := store.ListVersions(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, metas, writers+1)
	for i, m := range metas {
		assert.Equal(t, i+1, m.Version)
	}

	final, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, writers+1, final.Version)

	latest, err := store.GetVersion(ctx, p.ID, final.Version)
	require.NoError(t, err)
	assert.Equal(t, latest.Content, final.Content)
}

func TestGetVersion_InvalidNumber(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.GetVersion(context.Background(), uuid.New(), -1)
	assert.ErrorIs(t, err, domainprompt.ErrInvalidVersion)
}
