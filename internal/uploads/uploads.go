// Package uploads сохраняет загружаемые фотографии групп.
//
// Файл проверяется по расширению, сохраняется под устойчивым к коллизиям
// именем, затем открывается как изображение и уменьшается на месте так,
// чтобы ни одна сторона не превышала заданный ограничивающий квадрат.
// Пропорции сохраняются, изображение никогда не увеличивается.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Ограничивающие квадраты для фотографий групп.
const (
	// MaxCreateBox применяется при создании группы.
	MaxCreateBox = 300
	// MaxEditBox применяется при редактировании группы.
	MaxEditBox = 800
)

// ErrUnsupportedFormat возвращается для файлов с недопустимым расширением.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// Saver сохраняет фотографии в фиксированный каталог.
type Saver struct {
	dir string
}

// New создает Saver, при необходимости создавая каталог загрузок.
func New(dir string) (*Saver, error) {
	const op = "uploads.New"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Saver{dir: dir}, nil
}

// Dir возвращает каталог загрузок.
func (s *Saver) Dir() string {
	return s.dir
}

// Save сохраняет файл и уменьшает его до ограничивающего квадрата maxBox.
// Возвращает имя сохранённого файла относительно каталога загрузок.
func (s *Saver) Save(src io.Reader, filename string, maxBox int) (string, error) {
	const op = "uploads.Save"

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%s: %w", op, ErrUnsupportedFormat)
	}

	name := sanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name = name + "_" + uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = dst.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxBox && bounds.Dy() <= maxBox {
		// уже в пределах квадрата, файл остается как есть
		return name, nil
	}
	resized := imaging.Fit(img, maxBox, maxBox, imaging.Lanczos)
	if err = imaging.Save(resized, path); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// sanitizeName оставляет в имени файла только безопасные символы.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "photo"
	}
	return b.String()
}
