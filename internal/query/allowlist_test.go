package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry(postAllow, commentAllow)
	require.NoError(t, err)

	got, err := reg.Lookup("post")
	require.NoError(t, err)
	assert.Equal(t, "post", got.Resource)

	_, err = reg.Lookup("Post")
	assert.ErrorIs(t, err, ErrUnknownResource)

	assert.Equal(t, []string{"comment", "post"}, reg.Resources())
}

func TestRegistry_MustLookupPanics(t *testing.T) {
	reg, err := NewRegistry(commentAllow)
	require.NoError(t, err)
	assert.Panics(t, func() { reg.MustLookup("post") })
	assert.NotPanics(t, func() { reg.MustLookup("comment") })
}

func TestRegistry_RejectsBadConfig(t *testing.T) {
	_, err := NewRegistry(postAllow, postAllow)
	assert.Error(t, err)

	_, err = NewRegistry(AllowList{})
	assert.Error(t, err)

	_, err = NewRegistry(AllowList{Resource: "x", Booleans: []string{"flag"}})
	assert.Error(t, err)

	_, err = NewRegistry(AllowList{Resource: "x", Relations: map[string]string{"name": "owner"}})
	assert.Error(t, err)

	_, err = NewRegistry(AllowList{Resource: "x", Searchable: []string{"name"}, Relations: map[string]string{"name": ""}})
	assert.Error(t, err)
}

func TestAllowList_ExactMatch(t *testing.T) {
	assert.True(t, postAllow.CanSort("createdAt"))
	assert.False(t, postAllow.CanSort("createdat"))
	assert.False(t, postAllow.CanSort("created"))
	assert.Equal(t, "user", postAllow.RelationOf("email"))
	assert.Empty(t, postAllow.RelationOf("title"))
}

func TestCompile_ConcurrentReaders(t *testing.T) {
	reg, err := NewRegistry(postAllow, commentAllow)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allow, err := reg.Lookup("post")
			if err != nil {
				errs <- err
				return
			}
			_, err = Compile(allow, []Param{{Key: "search.username", Value: "a"}, {Key: "sort", Value: "-id"}})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
