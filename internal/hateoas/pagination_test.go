package hateoas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func relNames(rels []PageRelation) []string {
	names := make([]string, 0, len(rels))
	for _, r := range rels {
		names = append(names, r.Rel)
	}
	return names
}

func TestPageRelations(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		want       []PageRelation
	}{
		{
			name: "no results",
			page: 0, totalPages: 0,
			want: []PageRelation{{RelSelf, 0}},
		},
		{
			name: "single page",
			page: 0, totalPages: 1,
			want: []PageRelation{{RelSelf, 0}},
		},
		{
			name: "first of many",
			page: 0, totalPages: 4,
			want: []PageRelation{{RelSelf, 0}, {RelNext, 1}, {RelLast, 3}},
		},
		{
			name: "middle",
			page: 2, totalPages: 5,
			want: []PageRelation{{RelSelf, 2}, {RelNext, 3}, {RelPrev, 1}, {RelFirst, 0}, {RelLast, 4}},
		},
		{
			name: "last",
			page: 3, totalPages: 4,
			want: []PageRelation{{RelSelf, 3}, {RelPrev, 2}, {RelFirst, 0}},
		},
		{
			name: "past the end",
			page: 7, totalPages: 4,
			want: []PageRelation{{RelSelf, 7}, {RelPrev, 6}, {RelFirst, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageRelations(tt.page, tt.totalPages))
		})
	}
}

func TestPageRelationsMiddlePagesHaveAllRelations(t *testing.T) {
	for totalPages := 3; totalPages <= 12; totalPages++ {
		for page := 1; page < totalPages-1; page++ {
			got := relNames(PageRelations(page, totalPages))
			assert.ElementsMatch(t, []string{RelSelf, RelPrev, RelNext, RelFirst, RelLast}, got,
				"page %d of %d", page, totalPages)
		}
	}
}
