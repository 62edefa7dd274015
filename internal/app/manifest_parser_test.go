package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logAdapter "github.com/bft-labs/thumbship/internal/adapters/log"
	"github.com/bft-labs/thumbship/internal/domain"
)

func TestParse_Records(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("id,url\n1,http://x/a.png\n2,http://x/b.png")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []domain.RawRecord{
		{Row: 1, Index: 0, ID: "1", URL: "http://x/a.png"},
		{Row: 2, Index: 1, ID: "2", URL: "http://x/b.png"},
	}, result.Records)
}

func TestParse_HeaderOnly(t *testing.T) {
	rec := logAdapter.NewRecorder()
	p := NewManifestParser(rec)

	result, err := p.Parse("id,url\n")
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, rec.Entries())
}

func TestParse_RowShapeMismatch(t *testing.T) {
	rec := logAdapter.NewRecorder()
	p := NewManifestParser(rec)

	result, err := p.Parse("id,url\n1,http://x/a.png\n2,http://x/b.png,extra\n3,http://x/c.png\n")
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, 2, w.Row)
	assert.Equal(t, 2, w.Expected)
	assert.Equal(t, 3, w.Actual)
	assert.Equal(t, "2,http://x/b.png,extra", w.Line)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "1", result.Records[0].ID)
	assert.Equal(t, "3", result.Records[1].ID)

	entries := rec.Find("row shape mismatch")
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Field("row"))
	assert.Equal(t, 3, entries[0].Field("actual_fields"))
}

func TestParse_TooFewFields(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("index,id,url\n0,a\n")
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Actual)
	assert.Contains(t, result.Warnings[0].Error(), "has 2 fields, header has 3")
}

func TestParse_Idempotent(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())
	raw := "index,id,url\n5,a,http://x/a.png\nbad row\n6,b,\n"

	first, err := p.Parse(raw)
	require.NoError(t, err)
	second, err := p.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t\r\n"},
		{"byte order mark only", "\ufeff"},
		{"nul byte", "id,url\n1,\x00"},
		{"invalid utf-8", "id,url\n1,\xff\xfe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewManifestParser(logAdapter.NewRecorder())
			_, err := p.Parse(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInput)
		})
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no usable headers", ",,\n1,2,3\n", "no usable headers"},
		{"missing id", "name,url\na,http://x/a.png\n", `"id"`},
		{"missing url", "id\na\n", `"url"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewManifestParser(logAdapter.NewRecorder())
			_, err := p.Parse(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSchema)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_ByteOrderMarkAndCRLF(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("\ufeffid,url\r\n1,http://x/a.png\r\n\r\n2,http://x/b.png\r\n")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "http://x/a.png", result.Records[0].URL)
	assert.Equal(t, 2, result.Records[1].Row)
}

func TestParse_TrimsFields(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse(" id , url \n a , http://x/a.png \n")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "a", result.Records[0].ID)
	assert.Equal(t, "http://x/a.png", result.Records[0].URL)
}

func TestParse_Index(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("index,id,url\n7,a,http://x/a.png\n,b,http://x/b.png\n")
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 7, result.Records[0].Index)
	// An empty index falls back to the row position.
	assert.Equal(t, 1, result.Records[1].Index)
}

func TestParse_NarrowingWarnings(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"non-integer index", "index,id,url\nseven,a,http://x/a.png\n", `index "seven" is not an integer`},
		{"empty id", "id,url\n,http://x/a.png\n", "id is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := logAdapter.NewRecorder()
			p := NewManifestParser(rec)

			result, err := p.Parse(tt.raw)
			require.NoError(t, err)
			assert.Empty(t, result.Records)
			require.Len(t, result.Warnings, 1)
			assert.Equal(t, tt.reason, result.Warnings[0].Reason)
			assert.Equal(t, 1, rec.Count("row shape mismatch"))
		})
	}
}

func TestParse_EmptyURLKeepsRecord(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("id,url\na,\n")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "a", result.Records[0].ID)
	assert.Empty(t, result.Records[0].URL)
}

func TestParse_ExtraColumnsIgnored(t *testing.T) {
	p := NewManifestParser(logAdapter.NewRecorder())

	result, err := p.Parse("id,url,,caption\na,http://x/a.png,,hello\n")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, domain.RawRecord{Row: 1, Index: 0, ID: "a", URL: "http://x/a.png"}, result.Records[0])
}

func TestMaterializeAll(t *testing.T) {
	records := []domain.RawRecord{
		{Row: 1, Index: 3, ID: "a", URL: "http://x/a.png"},
		{Row: 2, Index: 4, ID: "b"},
	}

	got := MaterializeAll(records)
	assert.Equal(t, []domain.WorkingEntity{
		{Index: 3, ID: "a", URL: "http://x/a.png"},
		{Index: 4, ID: "b"},
	}, got)
	for _, e := range got {
		assert.Nil(t, e.Thumbnail)
	}
}
