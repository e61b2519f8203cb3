package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/mocks"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestYearsHandler_Handle_CSVFile(t *testing.T) {
	store := mocks.NewPlayStore()
	require.NoError(t, store.SavePlayInfo(testContext(t), entities.PlayMeta{CorpusID: "rom", PlayID: "plautus-amphitruo", Title: "Amphitruo"}))

	path := writeTempFile(t, "years.csv", "play_id,year\nplautus-amphitruo,-190\nseneca-medea,0\nterence-andria,-166\n")

	result, err := NewYearsHandler(store).Handle(testContext(t), "rom", path, YearsOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "seneca-medea", result.Skipped[0].PlayID)

	years, err := store.PlayYears(testContext(t), "rom")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"plautus-amphitruo": -190, "terence-andria": -166}, years)

	meta, err := store.FindPlayInfo(testContext(t), "rom", "plautus-amphitruo")
	require.NoError(t, err)
	assert.Equal(t, "Amphitruo", meta.Title)
}

func TestYearsHandler_Handle_KeepsTitle(t *testing.T) {
	store := mocks.NewPlayStore()
	require.NoError(t, store.SavePlayInfo(testContext(t), entities.PlayMeta{CorpusID: "rus", PlayID: "gogol-revizor", Title: "Ревизор"}))

	path := writeTempFile(t, "years.json", `[{"play_id": "gogol-revizor", "year": 1836}]`)

	result, err := NewYearsHandler(store).Handle(testContext(t), "rus", path, YearsOptions{Format: "auto"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	meta, err := store.FindPlayInfo(testContext(t), "rus", "gogol-revizor")
	require.NoError(t, err)
	assert.Equal(t, "Ревизор", meta.Title)
	assert.Equal(t, 1836, meta.Year)
}

func TestYearsHandler_Handle_ExplicitFormat(t *testing.T) {
	store := mocks.NewPlayStore()
	path := writeTempFile(t, "years.txt", "play_id,year\ngogol-revizor,1836\n")

	result, err := NewYearsHandler(store).Handle(testContext(t), "rus", path, YearsOptions{Format: "csv"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestYearsHandler_Handle_DryRun(t *testing.T) {
	store := mocks.NewPlayStore()
	path := writeTempFile(t, "years.csv", "play_id,year\ngogol-revizor,1836\n")

	result, err := NewYearsHandler(store).Handle(testContext(t), "rus", path, YearsOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, store.Info)
}

func TestYearsHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		opts    YearsOptions
		store   func() *mocks.PlayStore
		errMsg  string
	}{
		{
			name:    "unsupported format",
			file:    "years.xml",
			content: "<years/>",
			errMsg:  "unsupported format",
		},
		{
			name:    "invalid year",
			file:    "years.csv",
			content: "play_id,year\ngogol-revizor,eighteen\n",
			errMsg:  "parsing file",
		},
		{
			name:    "store failure",
			file:    "years.csv",
			content: "play_id,year\ngogol-revizor,1836\n",
			store: func() *mocks.PlayStore {
				s := mocks.NewPlayStore()
				s.Err = errors.New("disk full")
				return s
			},
			errMsg: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewPlayStore()
			if tt.store != nil {
				store = tt.store()
			}
			path := writeTempFile(t, tt.file, tt.content)

			_, err := NewYearsHandler(store).Handle(testContext(t), "rus", path, tt.opts)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestYearsHandler_Handle_FileNotFound(t *testing.T) {
	_, err := NewYearsHandler(mocks.NewPlayStore()).Handle(testContext(t), "rus", "/nonexistent/years.csv", YearsOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}
