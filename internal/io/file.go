package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpace    = regexp.MustCompile(`\s+`)
)

// CopyFile copies src to dst, keeping the permission bits of src. dst is
// truncated if it exists.
//
//	err := CopyFile("Tracks/Open Car.mp3", "library/Porcupine Tree/Deadwing/07 - Open Car.mp3")
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// MoveFile renames src to dst. When they are on different file systems the
// file is copied and the source removed.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// WriteFile writes data to path with mode 0644, creating parent
// directories.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName makes name safe to use as a single path component.
//
// Characters invalid on common file systems (<>:"/\|?* and control
// characters) become underscores, trailing dots are removed, whitespace
// runs collapse to one space and the result is trimmed. An empty result is
// returned as "_" so it never collapses a directory level.
//
//	SanitizeFileName("AC/DC")         // "AC_DC"
//	SanitizeFileName("Live!...")      // "Live!"
//	SanitizeFileName("  Deadwing  ")  // "Deadwing"
func SanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = repeatedSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ")
	if name == "" {
		return "_"
	}
	return name
}

// EnsureDir creates path and its parents with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileMover moves and copies files, creating the destination directory
// first.
type FileMover struct{}

// NewFileMover creates a FileMover.
func NewFileMover() *FileMover {
	return &FileMover{}
}

// Move moves src to dst.
func (m *FileMover) Move(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}
	if err := MoveFile(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}

// Copy copies src to dst.
func (m *FileMover) Copy(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}
	if err := CopyFile(src, dst); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
