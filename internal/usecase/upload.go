package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

type ImageUsecase struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

func NewImageUsecase(dir string, maxBytes int64, logger *slog.Logger) *ImageUsecase {
	return &ImageUsecase{dir: dir, maxBytes: maxBytes, logger: logger.With("component", "image_usecase")}
}

// Save stores an uploaded image under <dir>/user_<id>/ and returns its path
// relative to dir. An existing file of the same name is kept and the new one
// gets a numeric suffix.
func (u *ImageUsecase) Save(ctx context.Context, userID int64, filename string, r io.Reader) (string, error) {
	name, err := sanitizeImageName(filename)
	if err != nil {
		return "", err
	}

	folder := "user_" + strconv.FormatInt(userID, 10)
	dir := filepath.Join(u.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, name, err := createUnique(dir, name)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, io.LimitReader(r, u.maxBytes+1))
	closeErr := f.Close()
	if err == nil && n > u.maxBytes {
		err = domain.ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		if errors.Is(err, domain.ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write image: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(folder, name))
	u.logger.InfoContext(ctx, "image stored", "path", rel, "bytes", n)
	return rel, nil
}

// sanitizeImageName rejects names that are not a plain file name with an allowed extension.
func sanitizeImageName(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", domain.ErrInvalidFileName
	}
	name := filepath.Base(filename)
	if name == "." || strings.HasPrefix(name, ".") {
		return "", domain.ErrInvalidFileName
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(name))] {
		return "", domain.ErrUnsupportedImage
	}
	return name, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create image file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create image file: too many files named %q", name)
}
