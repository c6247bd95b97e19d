package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/metadata"
	"blog-backend/internal/query"
)

func compilePosts(t *testing.T, params ...string) *query.Spec {
	t.Helper()
	var ps []query.Param
	for i := 0; i+1 < len(params); i += 2 {
		ps = append(ps, query.Param{Key: params[i], Value: params[i+1]})
	}
	spec, err := query.Compile(metadata.PostAllowList, ps)
	require.NoError(t, err)
	return spec
}

func TestBuildSelect_Defaults(t *testing.T) {
	spec := compilePosts(t)

	q, err := BuildSelect(&SQLiteDialect{}, PostTable, spec)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT "+PostTable.Select+" FROM "+PostTable.From+" ORDER BY p.id DESC LIMIT ?1 OFFSET ?2",
		q.SQL)
	assert.Equal(t, []any{5, 0}, q.Params)
}

func TestBuildSelect_AllPredicateKinds(t *testing.T) {
	spec := compilePosts(t,
		"page", "3",
		"rows", "10",
		"search.username", "al_ce",
		"isPublished", "1",
		"createdAt.lte", "2024-12-31",
		"createdAt.gte", "2024-01-01",
		"sort", "-createdAt",
	)

	q, err := BuildSelect(&PostgresDialect{}, PostTable, spec)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT "+PostTable.Select+" FROM "+PostTable.From+
			` WHERE u.username LIKE $1 ESCAPE '\' AND p.is_published = $2`+
			" AND p.created_at >= $3 AND p.created_at <= $4"+
			" ORDER BY p.created_at DESC LIMIT $5 OFFSET $6",
		q.SQL)
	assert.Equal(t, []any{
		`%al\_ce%`,
		true,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		10,
		20,
	}, q.Params)
}

func TestBuildCount_SharesFilters(t *testing.T) {
	spec := compilePosts(t, "page", "2", "title", "hello", "sort", "id")

	q, err := BuildCount(&SQLiteDialect{}, PostTable, spec)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM "+PostTable.From+" WHERE p.title = ?1", q.SQL)
	assert.Equal(t, []any{"hello"}, q.Params)
}

func TestBuildSelect_ScopedComments(t *testing.T) {
	spec, err := query.Compile(metadata.CommentAllowList, []query.Param{{Key: "sort", Value: "createdAt"}})
	require.NoError(t, err)
	spec = spec.WithEquality("postId", query.Int(7))

	q, err := BuildSelect(&SQLiteDialect{}, CommentTable, spec)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT "+CommentTable.Select+" FROM comments c WHERE c.post_id = ?1 ORDER BY c.created_at ASC LIMIT ?2 OFFSET ?3",
		q.SQL)
	assert.Equal(t, []any{int64(7), 5, 0}, q.Params)
}

func TestBuildCount_TextColumnsBindToken(t *testing.T) {
	cases := []struct {
		key, value string
		want       string
	}{
		{"title", "2024", "2024"},
		{"title", "2024-01-01", "2024-01-01"},
		{"username", "007", "007"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			q, err := BuildCount(&PostgresDialect{}, PostTable, compilePosts(t, tc.key, tc.value))
			require.NoError(t, err)
			require.Len(t, q.Params, 1)
			assert.IsType(t, "", q.Params[0])
			assert.Equal(t, tc.want, q.Params[0])
		})
	}
}

func TestBuildSelect_RejectsValueOfWrongKind(t *testing.T) {
	cases := []struct {
		name  string
		spec  *query.Spec
		field string
	}{
		{"text for timestamp", compilePosts(t, "createdAt", "abc"), "createdAt"},
		{"integer bound for timestamp", compilePosts(t, "createdAt.gt", "42"), "createdAt"},
		{"date for integer", compilePosts(t).WithEquality("id", query.Coerce("2024-01-01")), "id"},
		{"text for integer", compilePosts(t).WithEquality("userId", query.String("me")), "userId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildSelect(&PostgresDialect{}, PostTable, tc.spec)
			require.ErrorIs(t, err, query.ErrInvalidFilterValue)
			var qe *query.Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tc.field, qe.Field)

			_, err = BuildCount(&PostgresDialect{}, PostTable, tc.spec)
			assert.ErrorIs(t, err, query.ErrInvalidFilterValue)
		})
	}

	spec := (&query.Spec{Page: 1, Rows: 5}).WithEquality("postId", query.String("x"))
	_, err := BuildSelect(&SQLiteDialect{}, CommentTable, spec)
	assert.ErrorIs(t, err, query.ErrInvalidFilterValue)
}

func TestBuildSelect_UnmappedField(t *testing.T) {
	spec := (&query.Spec{Page: 1, Rows: 5}).WithEquality("nope", query.Int(1))

	_, err := BuildSelect(&SQLiteDialect{}, PostTable, spec)
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestRebind(t *testing.T) {
	sqlStr := "UPDATE users SET email = $1 WHERE id = $2"
	assert.Equal(t, sqlStr, (&PostgresDialect{}).Rebind(sqlStr))
	assert.Equal(t, "UPDATE users SET email = ?1 WHERE id = ?2", (&SQLiteDialect{}).Rebind(sqlStr))
	assert.Equal(t, "SELECT '$' || ?10", (&SQLiteDialect{}).Rebind("SELECT '$' || $10"))
}

func TestDiffIDs(t *testing.T) {
	add, remove := diffIDs([]int64{1, 2, 3}, []int64{3, 4, 4, 5})
	assert.Equal(t, []int64{4, 5}, add)
	assert.Equal(t, []int64{1, 2}, remove)

	add, remove = diffIDs(nil, []int64{2, 2})
	assert.Equal(t, []int64{2}, add)
	assert.Empty(t, remove)
}
