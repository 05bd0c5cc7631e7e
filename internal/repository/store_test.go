package repository

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the behaviour every backend must share.
// The store must be empty when called.
func testStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		recent, err := s.ListRecent(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, recent)

		page, err := s.ListPage(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		assert.Empty(t, page.Data)
	})

	ids := make(map[string]bool)
	t.Run("insert round trip", func(t *testing.T) {
		created, err := s.Insert(ctx, "u1", "great product")
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		ids[created.ID] = true

		recent, err := s.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, created.ID, recent[0].ID)
		assert.Equal(t, "u1", recent[0].UserID)
		assert.Equal(t, "great product", recent[0].Message)
		assert.Nil(t, recent[0].Sentiment)
	})

	t.Run("newest first with unique ids", func(t *testing.T) {
		for i := 2; i <= 5; i++ {
			created, err := s.Insert(ctx, fmt.Sprintf("u%d", i), fmt.Sprintf("message %d", i))
			require.NoError(t, err)
			assert.False(t, ids[created.ID], "id %s reused", created.ID)
			ids[created.ID] = true
		}

		recent, err := s.ListRecent(ctx, 100)
		require.NoError(t, err)
		require.Len(t, recent, 5)
		for i, f := range recent {
			assert.Equal(t, fmt.Sprintf("u%d", 5-i), f.UserID)
		}
	})

	t.Run("pages", func(t *testing.T) {
		tests := []struct {
			name         string
			page         int
			pageSize     int
			wantPage     int
			wantPageSize int
			wantUsers    []string
		}{
			{name: "second page of one", page: 2, pageSize: 1, wantPage: 2, wantPageSize: 1, wantUsers: []string{"u4"}},
			{name: "first page of two", page: 1, pageSize: 2, wantPage: 1, wantPageSize: 2, wantUsers: []string{"u5", "u4"}},
			{name: "partial last page", page: 3, pageSize: 2, wantPage: 3, wantPageSize: 2, wantUsers: []string{"u1"}},
			{name: "past the end", page: 9, pageSize: 2, wantPage: 9, wantPageSize: 2, wantUsers: []string{}},
			{name: "page size clamped up", page: 1, pageSize: 0, wantPage: 1, wantPageSize: 1, wantUsers: []string{"u5"}},
			{name: "negative page size clamped up", page: 1, pageSize: -4, wantPage: 1, wantPageSize: 1, wantUsers: []string{"u5"}},
			{name: "page size clamped down", page: 1, pageSize: 1000, wantPage: 1, wantPageSize: 50, wantUsers: []string{"u5", "u4", "u3", "u2", "u1"}},
			{name: "page clamped up", page: -3, pageSize: 1, wantPage: 1, wantPageSize: 1, wantUsers: []string{"u5"}},
			{name: "largest page", page: math.MaxInt, pageSize: 50, wantPage: math.MaxInt/50 + 1, wantPageSize: 50, wantUsers: []string{}},
			{name: "largest page of one", page: math.MaxInt, pageSize: 1, wantPage: math.MaxInt, wantPageSize: 1, wantUsers: []string{}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				page, err := s.ListPage(ctx, tc.page, tc.pageSize)
				require.NoError(t, err)
				assert.Equal(t, tc.wantPage, page.Page)
				assert.Equal(t, tc.wantPageSize, page.PageSize)
				assert.Equal(t, int64(5), page.Total)
				assert.LessOrEqual(t, len(page.Data), page.PageSize)

				users := make([]string, 0, len(page.Data))
				for _, f := range page.Data {
					users = append(users, f.UserID)
				}
				assert.Equal(t, tc.wantUsers, users)
			})
		}
	})

	t.Run("recent limits", func(t *testing.T) {
		tests := []struct {
			limit    int
			expected int
		}{
			{limit: 0, expected: 1},
			{limit: -7, expected: 1},
			{limit: 3, expected: 3},
			{limit: 1000, expected: 5},
		}

		for _, tc := range tests {
			t.Run(fmt.Sprint(tc.limit), func(t *testing.T) {
				recent, err := s.ListRecent(ctx, tc.limit)
				require.NoError(t, err)
				assert.Len(t, recent, tc.expected)
			})
		}
	})

	t.Run("pages cover every record once", func(t *testing.T) {
		seen := make(map[string]bool)
		var total int64
		for p := 1; p <= 5; p++ {
			page, err := s.ListPage(ctx, p, 2)
			require.NoError(t, err)
			total = page.Total
			for _, f := range page.Data {
				assert.False(t, seen[f.ID])
				seen[f.ID] = true
			}
		}
		assert.GreaterOrEqual(t, total, int64(len(seen)))
		assert.Len(t, seen, 5)
	})
}
