package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/armina/internal/capsule"
)

func TestList_Empty(t *testing.T) {
	lib, _ := newTestLibrary(t)

	out, err := List(context.Background(), lib, ListInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
	assert.Equal(t, DefaultListLimit, out.Pagination.Limit)
	assert.False(t, out.Pagination.HasMore)
}

func TestList_OrderPaginationAndScores(t *testing.T) {
	ctx := context.Background()
	lib, cfg := newTestLibrary(t)

	var ids []string
	for i := 0; i < 5; i++ {
		out, err := Save(ctx, lib, cfg, SaveInput{Title: fmt.Sprintf("C%d", i), NotesText: "n"})
		require.NoError(t, err)
		ids = append(ids, out.ID)
	}
	require.NoError(t, lib.Records.PutProgress(ctx, ids[4], capsule.NewProgress(3)))

	out, err := List(ctx, lib, ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	// newest first
	assert.Equal(t, ids[4], out.Items[0].ID)
	assert.Equal(t, 3, out.Items[0].BestScore)
	assert.Equal(t, ids[3], out.Items[1].ID)
	assert.Equal(t, 0, out.Items[1].BestScore)
	assert.True(t, out.Pagination.HasMore)
	assert.Equal(t, 5, out.Pagination.Total)

	out, err = List(ctx, lib, ListInput{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, ids[0], out.Items[0].ID)
	assert.False(t, out.Pagination.HasMore)

	out, err = List(ctx, lib, ListInput{Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestList_LimitBounds(t *testing.T) {
	lib, _ := newTestLibrary(t)

	out, err := List(context.Background(), lib, ListInput{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, out.Pagination.Limit)
	assert.Equal(t, 0, out.Pagination.Offset)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	lib, cfg := newTestLibrary(t)

	inputs := []SaveInput{
		{Title: "Fractions", Subject: "Math", Level: "Beginner", NotesText: "halves and quarters"},
		{Title: "Calculus", Subject: "math ", Level: "Advanced", NotesText: "limits"},
		{Title: "Verbs", Subject: "French", Level: "Beginner", NotesText: "être and avoir"},
	}
	for _, in := range inputs {
		_, err := Save(ctx, lib, cfg, in)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		input ListInput
		want  []string
	}{
		{"subject normalized", ListInput{Subject: "MATH"}, []string{"Calculus", "Fractions"}},
		{"level", ListInput{Level: "beginner"}, []string{"Verbs", "Fractions"}},
		{"subject and level", ListInput{Subject: "math", Level: "advanced"}, []string{"Calculus"}},
		{"query title", ListInput{Query: "VERB"}, []string{"Verbs"}},
		{"query description", ListInput{Query: "quarters"}, []string{"Fractions"}},
		{"no match", ListInput{Query: "chemistry"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := List(ctx, lib, tt.input)
			require.NoError(t, err)
			titles := []string{}
			for _, item := range out.Items {
				titles = append(titles, item.Title)
			}
			assert.Equal(t, tt.want, titles)
			assert.Equal(t, len(tt.want), out.Pagination.Total)
		})
	}
}
