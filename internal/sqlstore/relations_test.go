package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"relation-labels/internal/metadata"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockExecutor(t *testing.T) (*StandardExecutor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStandardExecutor(db), mock
}

func mmConfig(sortField string) metadata.FieldConfig {
	return metadata.FieldConfig{
		LocalTable:    "pages",
		LocalField:    "category",
		Kind:          metadata.ManyToMany,
		ForeignTable:  "categories",
		JunctionTable: "pages_category_mm",
		LocalColumn:   metadata.DefaultLocalColumn,
		ForeignColumn: metadata.DefaultForeignColumn,
		SortField:     sortField,
	}
}

func TestJunctionKeysQuery(t *testing.T) {
	exec, mock := newMockExecutor(t)
	h := NewRelationHandler(exec)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `uid_foreign` FROM `pages_category_mm` WHERE `uid_local` = ?",
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"uid_foreign"}).AddRow(5).AddRow(3).AddRow(8))

	ids, err := h.ForeignKeys(context.Background(), mmConfig(""), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 8}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJunctionKeysQueryWithSortField(t *testing.T) {
	exec, mock := newMockExecutor(t)
	h := NewRelationHandler(exec)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `uid_foreign` FROM `pages_category_mm` WHERE `uid_local` = ? ORDER BY `sorting` ASC",
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"uid_foreign"}).AddRow(3))

	ids, err := h.ForeignKeys(context.Background(), mmConfig("sorting"), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJunctionKeysQueryError(t *testing.T) {
	exec, mock := newMockExecutor(t)
	h := NewRelationHandler(exec)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("table gone"))

	_, err := h.ForeignKeys(context.Background(), mmConfig(""), 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table gone")
}

func TestForeignKeysOneToManyParsesRawValue(t *testing.T) {
	exec, mock := newMockExecutor(t)
	h := NewRelationHandler(exec)

	cfg := metadata.FieldConfig{
		LocalTable:   "news",
		LocalField:   "related",
		Kind:         metadata.OneToMany,
		ForeignTable: "articles",
	}
	ids, err := h.ForeignKeys(context.Background(), cfg, 10, []byte("7, 2,9"))
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 2, 9}, ids)
	require.NoError(t, mock.ExpectationsWereMet(), "list fields issue no query")
}

func TestParseKeyList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []int64
	}{
		{"empty", "", nil},
		{"whitespace only", "  ", nil},
		{"plain list", "1,2,3", []int64{1, 2, 3}},
		{"padded entries", " 5 , 8 ", []int64{5, 8}},
		{"table prefixed", "tt_content_12,pages_7", []int64{12, 7}},
		{"mixed", "4,tt_content_12", []int64{4, 12}},
		{"empty entries skipped", "1,,2", []int64{1, 2}},
		{"garbage skipped", "abc,5", []int64{5}},
		{"trailing underscore", "tt_content_", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseKeyList(tt.raw))
		})
	}
}
