package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/scenyx-remote/internal/models"
	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

func filterListOf(names ...string) obsws.GetSourceFilterListResponse {
	var resp obsws.GetSourceFilterListResponse
	for i, name := range names {
		resp.Filters = append(resp.Filters, obsws.FilterEntry{FilterName: name, FilterIndex: i})
	}
	return resp
}

func TestFiltersSeedKeepsRemoteOrder(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))

	reqs := r.ofType(obsws.RequestGetSourceFilterList)
	require.Len(t, reqs, 1)
	assert.Equal(t, obsws.GetSourceFilterListRequest{SourceName: "A"}, reqs[0].data)

	r.respond(reqs[0], filterListOf("Zoom", "Blur", "Color"))

	assert.Equal(t, models.FilterList{Scene: "A", Names: []string{"Zoom", "Blur", "Color"}, Loaded: true}, filters.List())
}

func TestFiltersSeedSkipsMalformedEntries(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))

	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[0], map[string]any{
		"filters": []any{map[string]any{"filterName": 5}, map[string]any{"filterName": "Zoom"}, map[string]any{"filterName": "Blur"}},
	})

	assert.Equal(t, models.FilterList{Scene: "A", Names: []string{"Zoom", "Blur"}, Loaded: true}, filters.List())
}

func TestFiltersNotLoadedIsDistinctFromEmpty(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)

	initial := filters.List()
	assert.False(t, initial.Loaded)
	assert.Empty(t, initial.Names)

	require.NoError(t, filters.Seed(r, "A"))
	pending := filters.List()
	assert.False(t, pending.Loaded)
	assert.Equal(t, "A", pending.Scene)

	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[0], filterListOf())
	loaded := filters.List()
	assert.True(t, loaded.Loaded)
	assert.Empty(t, loaded.Names)
}

func TestFiltersReseedDiscardsPreviousScene(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))
	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[0], filterListOf("Zoom"))

	require.NoError(t, filters.Seed(r, "B"))

	// Transient empty state while B is in flight; A's filters are gone.
	assert.Equal(t, models.FilterList{Scene: "B", Names: []string{}}, filters.List())

	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[1], filterListOf("Shake"))
	assert.Equal(t, []string{"Shake"}, filters.List().Names)
}

func TestFiltersStaleResponseDropped(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))
	require.NoError(t, filters.Seed(r, "B"))
	reqs := r.ofType(obsws.RequestGetSourceFilterList)
	require.Len(t, reqs, 2)

	r.respond(reqs[1], filterListOf("Shake"))
	r.respond(reqs[0], filterListOf("Zoom"))

	assert.Equal(t, models.FilterList{Scene: "B", Names: []string{"Shake"}, Loaded: true}, filters.List())
}

func TestFiltersFailedSeedStaysNotLoaded(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))

	r.fail(r.ofType(obsws.RequestGetSourceFilterList)[0], 600)

	list := filters.List()
	assert.False(t, list.Loaded)
	assert.Empty(t, list.Names)
}

func TestEnableFilterSendsEnabledTrue(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))
	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[0], filterListOf("Zoom"))
	before := filters.List()

	require.NoError(t, filters.EnableFilter(r, "A", "Zoom"))

	reqs := r.ofType(obsws.RequestSetSourceFilterEnabled)
	require.Len(t, reqs, 1)
	assert.Equal(t, obsws.SetSourceFilterEnabledRequest{SourceName: "A", FilterName: "Zoom", FilterEnabled: true}, reqs[0].data)

	// The response is only logged.
	r.respond(reqs[0], struct{}{})
	assert.Equal(t, before, filters.List())
}

func TestFiltersListIsACopy(t *testing.T) {
	r := newFakeRequester(t)
	filters := NewFilters(nil)
	require.NoError(t, filters.Seed(r, "A"))
	r.respond(r.ofType(obsws.RequestGetSourceFilterList)[0], filterListOf("Zoom"))

	list := filters.List()
	list.Names[0] = "changed"

	assert.Equal(t, []string{"Zoom"}, filters.List().Names)
}
