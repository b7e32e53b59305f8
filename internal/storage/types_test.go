package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/folio/internal/storage"
)

func TestListOptions_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   storage.ListOptions
		want storage.ListOptions
	}{
		{"defaults", storage.ListOptions{}, storage.ListOptions{Limit: 20}},
		{"clamps limit", storage.ListOptions{Limit: 1000}, storage.ListOptions{Limit: 100}},
		{"negative offset", storage.ListOptions{Limit: 5, Offset: -3}, storage.ListOptions{Limit: 5}},
		{"keeps filter", storage.ListOptions{Limit: 5, Offset: 10, ValidOnly: true}, storage.ListOptions{Limit: 5, Offset: 10, ValidOnly: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.in
			opts.Normalize()
			assert.Equal(t, tc.want, opts)
		})
	}
}

func TestNewPage(t *testing.T) {
	page := storage.NewPage([]int{1, 2}, 5, storage.ListOptions{Limit: 2, Offset: 2})
	assert.True(t, page.HasMore)
	assert.Equal(t, 5, page.Total)

	last := storage.NewPage([]int{5}, 5, storage.ListOptions{Limit: 2, Offset: 4})
	assert.False(t, last.HasMore)

	empty := storage.NewPage[int](nil, 0, storage.ListOptions{Limit: 2})
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasMore)
}
