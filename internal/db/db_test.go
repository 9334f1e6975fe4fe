package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Portfolio Site", "portfolio-site"},
		{"  ICT   Asset Tracker ", "ict-asset-tracker"},
		{"C++ & Go: Notes!", "c--go-notes"},
		{"already-a-slug", "already-a-slug"},
		{"Ünïcode Title", "ncode-title"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestEncodedCollections(t *testing.T) {
	assert.Equal(t, []string{
		CollectionExperienceHighlights,
		CollectionProjectMedia,
		CollectionProjectTags,
	}, EncodedCollections())
}

func TestEncodedListColumn_Unknown(t *testing.T) {
	db := &DB{}
	store, err := db.EncodedListColumn("users; DROP TABLE projects")
	require.Error(t, err)
	assert.Nil(t, store)
	assert.True(t, errors.Is(err, ErrNotFound))

	for _, name := range EncodedCollections() {
		store, err := db.EncodedListColumn(name)
		require.NoError(t, err, name)
		assert.NotNil(t, store)
	}
}

func TestMapWriteError(t *testing.T) {
	err := mapWriteError(pgx.ErrNoRows, "get project")
	assert.ErrorIs(t, err, ErrNotFound)

	err = mapWriteError(&pgconn.PgError{Code: "23505", ConstraintName: "projects_slug_key"}, "create project")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "projects_slug_key")

	err = mapWriteError(fmt.Errorf("boom"), "update link")
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "failed to update link: boom", err.Error())
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	v := nullIfEmpty("x")
	require.NotNil(t, v)
	assert.Equal(t, "x", *v)
}
