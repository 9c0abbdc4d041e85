// Package assets prepares the output tree: it wipes it, copies the static
// folders and writes the bundled stylesheet.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"go.uber.org/zap"
)

// StyleSheet is the bundle every page links to.
const StyleSheet = "main.css"

// Clean removes out and recreates it along with out/posts.
func Clean(out string) error {
	if out == "" || out == "/" {
		return fmt.Errorf("assets: refusing to clean %q", out)
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("assets: remove %s: %w", out, err)
	}
	if err := os.MkdirAll(filepath.Join(out, "posts"), 0o755); err != nil {
		return fmt.Errorf("assets: create %s: %w", out, err)
	}
	return nil
}

// Sync copies each of dirs (relative to root) into out under the same name.
// Missing directories are skipped.
func Sync(root, out string, dirs []string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, dir := range dirs {
		src := filepath.Join(root, dir)
		info, err := os.Stat(src)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("asset dir missing, skipped", zap.String("dir", dir))
			continue
		}
		if err != nil {
			return fmt.Errorf("assets: stat %s: %w", src, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("assets: %s is not a directory", src)
		}
		if err := copy.Copy(src, filepath.Join(out, dir)); err != nil {
			return fmt.Errorf("assets: copy %s: %w", dir, err)
		}
		logger.Debug("asset dir copied", zap.String("dir", dir))
	}
	return nil
}

// BundleCSS concatenates files in order, appends extra, minifies the result
// and writes it to out/main.css. It returns the size of the written bundle.
func BundleCSS(files []string, extra, out string) (int, error) {
	var buf bytes.Buffer
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return 0, fmt.Errorf("assets: read stylesheet: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	buf.WriteString(extra)

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	min, err := m.Bytes("text/css", buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("assets: minify stylesheet: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, StyleSheet), min, 0o644); err != nil {
		return 0, fmt.Errorf("assets: write stylesheet: %w", err)
	}
	return len(min), nil
}
