package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

// MockFetcher simulates the network layer using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadBirthDate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
		wantDate time.Time
		wantErr  error
	}{
		{
			name:     "Dashed",
			content:  "BEGIN:VCARD\nVERSION:4.0\nFN:Jane Doe\nBDAY:1990-04-02\nEND:VCARD",
			wantName: "Jane Doe",
			wantDate: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Basic",
			content:  "BEGIN:VCARD\nVERSION:3.0\nFN:Basic\nBDAY:19851231\nEND:VCARD",
			wantName: "Basic",
			wantDate: time.Date(1985, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "SkipsYearlessCard",
			content: "BEGIN:VCARD\nVERSION:4.0\nFN:No Year\nBDAY:--04-02\nEND:VCARD\n" +
				"BEGIN:VCARD\nVERSION:4.0\nFN:Second\nBDAY:2001-09-09\nEND:VCARD",
			wantName: "Second",
			wantDate: time.Date(2001, 9, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "NoBirthday",
			content: "BEGIN:VCARD\nVERSION:4.0\nFN:Nobody\nEND:VCARD",
			wantErr: engine.ErrNoBirthday,
		},
		{
			name:    "Empty",
			content: "",
			wantErr: engine.ErrNoBirthday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := engine.ReadBirthDate(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rec.Name)
			assert.True(t, tt.wantDate.Equal(rec.DateOfBirth), "got %s", rec.DateOfBirth)
		})
	}
}

func TestImporter_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCARD\nVERSION:4.0\nFN:Me\nBDAY:1994-06-15\nEND:VCARD"), 0o600))

	imp := &engine.Importer{}
	rec, err := imp.Import(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "1994-06-15", engine.FormatDate(rec.DateOfBirth))
}

func TestImporter_Remote(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/me.vcf").
		Return(io.NopCloser(strings.NewReader("BEGIN:VCARD\nVERSION:3.0\nFN:Remote\nBDAY:1970-01-01\nEND:VCARD")), nil)

	imp := &engine.Importer{Fetcher: fetcher}
	rec, err := imp.Import(context.Background(), "https://dav.example.com/me.vcf")

	require.NoError(t, err)
	assert.Equal(t, "Remote", rec.Name)
	fetcher.AssertExpectations(t)
}

func TestImporter_Errors(t *testing.T) {
	t.Run("EmptySource", func(t *testing.T) {
		_, err := (&engine.Importer{}).Import(context.Background(), "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrSourceEmpty)
	})

	t.Run("MissingFetcher", func(t *testing.T) {
		_, err := (&engine.Importer{}).Import(context.Background(), "http://example.com/a.vcf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrFetcherMissing)
	})

	t.Run("NetworkError", func(t *testing.T) {
		expected := errors.New("network unreachable")
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, expected)

		_, err := (&engine.Importer{Fetcher: fetcher}).Import(context.Background(), "http://bad.example.com")
		assert.ErrorIs(t, err, expected)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := (&engine.Importer{}).Import(context.Background(), filepath.Join(t.TempDir(), "absent.vcf"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
