package sqlstore

import (
	"context"
	"regexp"
	"testing"

	"relation-labels/internal/record"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayDefaultLanguagePassesThrough(t *testing.T) {
	exec, mock := newMockExecutor(t)
	o := NewOverlayer(exec, OverlayConfig{})

	rec := record.New("categories", 5, map[string]any{"title": "A"})
	out, err := o.Overlay(context.Background(), rec, 0)
	require.NoError(t, err)
	assert.Equal(t, rec, out)
	require.NoError(t, mock.ExpectationsWereMet(), "default language issues no query")
}

func TestOverlayMergesLocalizedFields(t *testing.T) {
	exec, mock := newMockExecutor(t)
	o := NewOverlayer(exec, OverlayConfig{})

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `categories` WHERE `l10n_parent` = ? AND `sys_language_uid` = ? LIMIT 1",
	)).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"uid", "l10n_parent", "sys_language_uid", "title", "subtitle"}).
			AddRow(99, 5, 2, []byte("Ä"), nil))

	rec := record.New("categories", 5, map[string]any{"title": "A", "subtitle": "original"})
	out, err := o.Overlay(context.Background(), rec, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(5), out.UID, "identity stays with the parent record")
	assert.Equal(t, "Ä", out.String("title"))
	assert.Equal(t, "original", out.String("subtitle"), "nil localized fields keep the parent value")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverlayWithoutLocalizedRowReturnsOriginal(t *testing.T) {
	exec, mock := newMockExecutor(t)
	o := NewOverlayer(exec, OverlayConfig{})

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "l10n_parent", "sys_language_uid", "title"}))

	rec := record.New("categories", 5, map[string]any{"title": "A"})
	out, err := o.Overlay(context.Background(), rec, 2)
	require.NoError(t, err)
	assert.Equal(t, rec, out)
}

func TestOverlayCustomColumns(t *testing.T) {
	exec, mock := newMockExecutor(t)
	o := NewOverlayer(exec, OverlayConfig{
		LanguageColumn: "lang_id",
		ParentColumn:   "translation_of",
	})

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `articles` WHERE `translation_of` = ? AND `lang_id` = ? LIMIT 1",
	)).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"uid", "translation_of", "lang_id", "title"}).
			AddRow(70, 7, 3, "translated"))

	rec := record.New("articles", 7, map[string]any{"title": "original"})
	out, err := o.Overlay(context.Background(), rec, 3)
	require.NoError(t, err)
	assert.Equal(t, "translated", out.String("title"))
	require.NoError(t, mock.ExpectationsWereMet())
}
