package uploads

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngReader(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func TestSave_DownscalesLargeImage(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := saver.Save(pngReader(t, 600, 900), "vacation.png", MaxCreateBox)
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(saver.Dir(), name))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), MaxCreateBox)
	assert.LessOrEqual(t, bounds.Dy(), MaxCreateBox)
	// пропорции 2:3 должны сохраниться
	assert.Equal(t, 200, bounds.Dx())
	assert.Equal(t, 300, bounds.Dy())
}

func TestSave_KeepsSmallImageUnscaled(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := saver.Save(pngReader(t, 120, 90), "icon.png", MaxCreateBox)
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(saver.Dir(), name))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 120, bounds.Dx())
	assert.Equal(t, 90, bounds.Dy())
}

func TestSave_EditBoxAllowsLargerPhotos(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := saver.Save(pngReader(t, 1600, 800), "banner.png", MaxEditBox)
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(saver.Dir(), name))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, MaxEditBox, bounds.Dx())
	assert.Equal(t, 400, bounds.Dy())
}

func TestSave_RejectsUnsupportedExtension(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = saver.Save(bytes.NewReader([]byte("not an image")), "report.pdf", MaxCreateBox)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSave_UniqueNamesForSameFilename(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := saver.Save(pngReader(t, 50, 50), "photo.png", MaxCreateBox)
	require.NoError(t, err)
	second, err := saver.Save(pngReader(t, 50, 50), "photo.png", MaxCreateBox)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSave_SanitizesFilename(t *testing.T) {
	saver, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := saver.Save(pngReader(t, 50, 50), "../../etc/наша фотка.png", MaxCreateBox)
	require.NoError(t, err)

	assert.False(t, strings.Contains(name, "/"))
	assert.False(t, strings.Contains(name, ".."))
	assert.True(t, strings.HasSuffix(name, ".png"))
}
