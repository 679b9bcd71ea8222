// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const zipConverterID = "zip"

// ZipConverter expands ZIP archives: every regular file is extracted and
// converted through the registry that dispatched the archive, and the
// results are concatenated in archive order.
//
// Archive problems never fail the conversion. They are reported inline as an
// "[ERROR] ..." result so a batch of archives keeps going.
type ZipConverter struct {
	markitdown *MarkItDown
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(m *MarkItDown) *ZipConverter {
	return &ZipConverter{markitdown: m}
}

func (c *ZipConverter) Accepts(opts ConverterOptions) bool {
	return opts.FileExtension == ".zip"
}

func (c *ZipConverter) Convert(ctx context.Context, src Source, opts ConverterOptions) (*DocumentConverterResult, error) {
	name := archiveDisplayName(src, opts)
	md, err := c.expand(ctx, src, name, opts)
	if err != nil {
		return nil, err
	}
	return &DocumentConverterResult{Markdown: md}, nil
}

// expand renders one archive level. The only error it returns is context
// cancellation; everything else becomes inline text.
func (c *ZipConverter) expand(ctx context.Context, src Source, name string, opts ConverterOptions) (string, error) {
	registry := opts.ParentConverters()
	if registry == nil {
		return fmt.Sprintf("[ERROR] No converters available to process zip contents from: %s", name), nil
	}

	zr, closer, err := openZip(src)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return fmt.Sprintf("[ERROR] Invalid or corrupted zip file: %s", name), nil
		}
		return fmt.Sprintf("[ERROR] Failed to process zip file %s: %v", name, err), nil
	}
	defer closer()

	dir, err := os.MkdirTemp("", "markitdown-zip-*")
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to process zip file %s: %v", name, err), nil
	}
	if opts.cleanupExtracted() {
		defer os.RemoveAll(dir)
	} else {
		c.logger().Debug("keeping extracted archive", zap.String("archive", name), zap.String("dir", dir))
	}

	entries, err := c.extract(zr, dir)
	if err != nil {
		return fmt.Sprintf("[ERROR] Failed to process zip file %s: %v", name, err), nil
	}

	sections := make([]string, len(entries))
	matched := make([]bool, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.concurrency()))
	for i, e := range entries {
		g.Go(func() error {
			md, ok, err := c.convertEntry(gctx, registry, e, opts)
			if err != nil {
				return err
			}
			sections[i], matched[i] = md, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Content from the zip file `%s`:\n\n", name)
	for i, e := range entries {
		if !matched[i] {
			continue
		}
		fmt.Fprintf(&b, "\n## File: %s\n\n%s\n\n", e.name, sections[i])
	}
	return b.String(), nil
}

type zipEntry struct {
	name string // path inside the archive
	path string // extracted location
}

// extract writes every regular file of zr to its own numbered directory
// under dir, so entries sharing a name or a path prefix never collide.
// Entries whose names would escape dir are skipped.
func (c *ZipConverter) extract(zr *zip.Reader, dir string) ([]zipEntry, error) {
	var entries []zipEntry
	for i, f := range zr.File {
		if !f.Mode().IsRegular() {
			continue
		}
		rel := filepath.FromSlash(strings.TrimPrefix(f.Name, "/"))
		if !filepath.IsLocal(rel) {
			c.logger().Debug("skipping archive entry outside extraction dir", zap.String("entry", f.Name))
			continue
		}
		dst := filepath.Join(dir, strconv.Itoa(i), filepath.Base(rel))
		if err := extractFile(f, dst); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		entries = append(entries, zipEntry{name: f.Name, path: dst})
	}
	return entries, nil
}

func extractFile(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// convertEntry runs the registry over one extracted entry with this
// converter excluded. A nested archive nobody else claimed is expanded here,
// one level deeper, until the depth limit. ok reports whether the entry
// produced a section, even an empty one.
func (c *ZipConverter) convertEntry(ctx context.Context, registry *RegistryView, e zipEntry, opts ConverterOptions) (md string, ok bool, err error) {
	ext := normalizeExtension(path.Ext(e.name))
	if ext == "" {
		if m, err := mimetype.DetectFile(e.path); err == nil {
			ext = m.Extension()
		}
	}

	entryOpts := opts.withExclusion(zipConverterID).WithExtension(ext)
	entryOpts.depth = opts.depth + 1
	entryOpts.URL, entryOpts.MIMEType, entryOpts.Charset = "", "", ""

	src := LocalPath(e.path)
	var attempts []FailedConversionAttempt
	res, err := registry.trial(ctx, src, entryOpts, &attempts)
	if err != nil {
		return "", false, err
	}
	for _, a := range attempts {
		c.logger().Debug("archive entry attempt failed",
			zap.String("entry", e.name),
			zap.String("converter", a.Converter),
			zap.Error(a.Err),
		)
	}
	if res != nil {
		return strings.TrimSpace(res.Markdown), true, nil
	}

	if ext == ".zip" {
		if opts.depth+1 >= c.maxDepth() {
			c.logger().Debug("archive nesting limit reached", zap.String("entry", e.name), zap.Int("depth", entryOpts.depth))
			return "", false, nil
		}
		md, err := c.expand(ctx, src, path.Base(e.name), entryOpts)
		return strings.TrimSpace(md), err == nil, err
	}

	c.logger().Debug("dropping unconverted archive entry", zap.String("entry", e.name), zap.String("ext", ext))
	return "", false, nil
}

// openZip opens file-backed archives in place and buffers from memory.
func openZip(src Source) (*zip.Reader, func(), error) {
	if p, ok := src.Path(); ok {
		rc, err := zip.OpenReader(p)
		if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
			return nil, nil, err
		}
		return &rc.Reader, func() { rc.Close() }, nil
	}
	data, err := src.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	// Insecure names are rejected per entry during extraction.
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, nil, err
	}
	return zr, func() {}, nil
}

// archiveDisplayName names the archive in headers and error text.
func archiveDisplayName(src Source, opts ConverterOptions) string {
	if opts.URL != "" {
		if u, err := url.Parse(opts.URL); err == nil {
			if base := path.Base(u.Path); base != "." && base != "/" {
				return base
			}
		}
	}
	if name := src.Name(); name != "" {
		return name
	}
	return "archive" + opts.FileExtension
}

func (c *ZipConverter) logger() *zap.Logger {
	if c.markitdown == nil || c.markitdown.logger == nil {
		return zap.NewNop()
	}
	return c.markitdown.logger
}

func (c *ZipConverter) concurrency() int {
	if c.markitdown == nil {
		return 1
	}
	return c.markitdown.archiveConcurrency
}

func (c *ZipConverter) maxDepth() int {
	if c.markitdown == nil || c.markitdown.maxArchiveDepth <= 0 {
		return defaultMaxArchiveDepth
	}
	return c.markitdown.maxArchiveDepth
}
