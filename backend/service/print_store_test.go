package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrintStore(t *testing.T) *PrintStore {
	t.Helper()
	s, err := NewPrintStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestPrintStoreSaveAndGet(t *testing.T) {
	s := newTestPrintStore(t)
	img := pngBytes(t, 2, 2)

	p, err := s.Save("61796.PNG", img)
	require.NoError(t, err)
	assert.Equal(t, "61796", p.ContractNumber)
	assert.Equal(t, "61796.png", p.Filename)
	assert.Equal(t, "png", p.Format)

	got, err := s.Get("61796")
	require.NoError(t, err)
	assert.Equal(t, img, got.Data)
	assert.Equal(t, "image/png", got.ContentType())

	_, err = s.Get("100")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("../61796")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrintStoreReplacesOtherFormat(t *testing.T) {
	s := newTestPrintStore(t)
	_, err := s.Save("100.png", pngBytes(t, 2, 2))
	require.NoError(t, err)
	_, err = s.Save("100.jpeg", jpegBytes(t, 2, 2))
	require.NoError(t, err)
	_, err = s.Save("200.jpg", jpegBytes(t, 2, 2))
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "100", list[0].ContractNumber)
	assert.Equal(t, "jpeg", list[0].Format)
	assert.Nil(t, list[0].Data)
	assert.Equal(t, "200", list[1].ContractNumber)
}

func TestPrintStoreRejectsInvalidFiles(t *testing.T) {
	s := newTestPrintStore(t)

	_, err := s.Save("100.gif", []byte("gif"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Save(".png", []byte("png"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Save("100.png", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPrintStoreRejectsMalformedImages(t *testing.T) {
	s := newTestPrintStore(t)

	tests := []struct {
		name   string
		file   string
		data   []byte
		reason string
	}{
		{"not an image", "61796.png", []byte("definitely not a png"), "61796.png: not a valid image"},
		{"truncated png", "61796.png", pngBytes(t, 2, 2)[:10], "61796.png: not a valid image"},
		{"jpeg named png", "61796.png", jpegBytes(t, 2, 2), "61796.png: content is jpeg, not png"},
		{"png named jpg", "61796.jpg", pngBytes(t, 2, 2), "61796.jpg: content is png, not jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(tt.file, tt.data)
			require.ErrorIs(t, err, ErrInvalidInput)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}

	_, err := s.Get("61796")
	assert.ErrorIs(t, err, ErrNotFound)

	result, err := s.ImportArchive(buildZip(t, map[string][]byte{
		"100.png": pngBytes(t, 2, 2),
		"200.jpg": []byte("jpeg"),
	}))
	assert.ErrorIs(t, err, ErrInvalidInput)
	require.NotNil(t, result)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, Rejection{Filename: "200.jpg", Reason: "not a valid image"}, result.Rejected[0])
	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPrintStoreDelete(t *testing.T) {
	s := newTestPrintStore(t)
	for name, data := range map[string][]byte{"1.png": pngBytes(t, 2, 2), "2.jpg": jpegBytes(t, 2, 2), "3.jpeg": jpegBytes(t, 2, 2)} {
		_, err := s.Save(name, data)
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete("1"))
	assert.ErrorIs(t, s.Delete("1"), ErrNotFound)

	n, err := s.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPrintStoreImportArchive(t *testing.T) {
	s := newTestPrintStore(t)
	archive := buildZip(t, map[string][]byte{
		"prints/":                nil,
		"prints/100.png":         pngBytes(t, 2, 2),
		"200.JPEG":               jpegBytes(t, 2, 2),
		"__MACOSX/._100.png":     []byte("meta"),
		"prints/.DS_Store":       []byte("ds"),
		"prints/sub/.hidden.jpg": []byte("x"),
	})

	result, err := s.ImportArchive(archive)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"100.png", "200.jpeg"}, result.Accepted)
	assert.Empty(t, result.Rejected)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPrintStoreImportArchiveRejectsInvalidEntries(t *testing.T) {
	s := newTestPrintStore(t)
	archive := buildZip(t, map[string][]byte{
		"100.png":   pngBytes(t, 2, 2),
		"notes.txt": []byte("texto"),
	})

	result, err := s.ImportArchive(archive)
	assert.ErrorIs(t, err, ErrInvalidInput)
	require.NotNil(t, result)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "notes.txt", result.Rejected[0].Filename)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.ImportArchive([]byte("not a zip"))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = s.ImportArchive(buildZip(t, map[string][]byte{".DS_Store": []byte("x")}))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
