package shared

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorContextRoundTrip(t *testing.T) {
	ctx := ContextWithActor(context.Background(), Actor{ID: 42, Permissions: []string{"Ledger.Period.Close"}})
	actor, ok := ActorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), actor.ID)
	assert.True(t, actor.HasPermission("ledger.period.close"))
	assert.False(t, actor.HasPermission("ledger.period.reopen"))
	assert.Equal(t, int64(0), ActorID(context.Background()))
}

func TestWildcardPermission(t *testing.T) {
	assert.True(t, Actor{Permissions: []string{"*"}}.HasPermission("ledger.journal.post"))
}

func TestPageFromQueryClamps(t *testing.T) {
	page, perPage := PageFromQuery(url.Values{"page": {"0"}, "per_page": {"10000"}})
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPerPage, perPage)

	p := NewPagination(3, 20, 45)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 40, p.Offset())
}
