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
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ExtensionSet is an insertion-ordered set of lowercase, dot-prefixed
// extensions. Insertion order is trial order.
type ExtensionSet struct {
	exts []string
}

// NewExtensionSet builds a set from exts, skipping empty values and duplicates.
func NewExtensionSet(exts ...string) ExtensionSet {
	var s ExtensionSet
	for _, ext := range exts {
		s.Add(ext)
	}
	return s
}

// Add appends ext unless it is empty or already present.
func (s *ExtensionSet) Add(ext string) bool {
	ext = normalizeExtension(ext)
	if ext == "" || ext == "." || s.Contains(ext) {
		return false
	}
	s.exts = append(s.exts, ext)
	return true
}

// Contains reports whether ext is in the set.
func (s ExtensionSet) Contains(ext string) bool {
	ext = normalizeExtension(ext)
	for _, e := range s.exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Len returns the number of extensions.
func (s ExtensionSet) Len() int {
	return len(s.exts)
}

// List returns the extensions in trial order.
func (s ExtensionSet) List() []string {
	out := make([]string, len(s.exts))
	copy(out, s.exts)
	return out
}

// mimeExtensions maps content types to their canonical extension. Types not
// listed here fall back to the mimetype registry.
var mimeExtensions = map[string]string{
	"text/html":                               ".html",
	"application/xhtml+xml":                   ".html",
	"text/plain":                              ".txt",
	"text/markdown":                           ".md",
	"text/x-markdown":                         ".md",
	"text/csv":                                ".csv",
	"application/csv":                         ".csv",
	"application/json":                        ".json",
	"application/jsonl":                       ".jsonl",
	"application/x-ndjson":                    ".jsonl",
	"text/xml":                                ".xml",
	"application/xml":                         ".xml",
	"application/rss+xml":                     ".rss",
	"application/atom+xml":                    ".atom",
	"application/pdf":                         ".pdf",
	"application/zip":                         ".zip",
	"application/x-zip-compressed":            ".zip",
	"application/epub+zip":                    ".epub",
	"application/x-ipynb+json":                ".ipynb",
	"application/vnd.ms-excel":                ".xls",
	"application/vnd.oasis.opendocument.text": ".odt",
	"application/rtf":                         ".rtf",
	"text/rtf":                                ".rtf",
	"image/jpeg":                              ".jpg",
	"image/png":                               ".png",
	"audio/wav":                               ".wav",
	"audio/x-wav":                             ".wav",
	"audio/mpeg":                              ".mp3",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// extensionForMIME returns the canonical extension of a media type, or "".
func extensionForMIME(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}
	if m := mimetype.Lookup(mediaType); m != nil {
		return m.Extension()
	}
	return ""
}

// mimeForExtension returns the media type of an extension, used to classify
// suffixes (e.g. whether they denote text).
func mimeForExtension(ext string) string {
	ext = normalizeExtension(ext)
	extMap := map[string]string{
		".txt":      "text/plain",
		".text":     "text/plain",
		".log":      "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".rst":      "text/x-rst",
		".csv":      "text/csv",
		".tsv":      "text/tab-separated-values",
		".html":     "text/html",
		".htm":      "text/html",
		".xml":      "text/xml",
		".css":      "text/css",
		".yaml":     "text/yaml",
		".yml":      "text/yaml",
		".json":     "application/json",
		".jsonl":    "application/jsonl",
		".pdf":      "application/pdf",
		".zip":      "application/zip",
		".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".xls":      "application/vnd.ms-excel",
		".rss":      "application/rss+xml",
		".atom":     "application/atom+xml",
		".epub":     "application/epub+zip",
		".ipynb":    "application/x-ipynb+json",
	}
	if m, ok := extMap[ext]; ok {
		return m
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if parsed, _, err := mime.ParseMediaType(mt); err == nil {
			return parsed
		}
		return mt
	}
	return ""
}

// resolvePath builds the candidate set for a local file.
func resolvePath(p string, opts ConverterOptions) (ExtensionSet, error) {
	exts := NewExtensionSet(opts.FileExtension)
	exts.Add(filepath.Ext(p))
	exts.Add(extensionForMIME(mediaTypeOf(opts.MIMEType)))
	if exts.Len() == 0 {
		return exts, &UnresolvedTypeError{Path: p}
	}
	return exts, nil
}

var reExtension = regexp.MustCompile(`^\.?[A-Za-z0-9_+-]+$`)

// resolveBuffer validates the mandatory extension hint of a buffer.
func resolveBuffer(opts ConverterOptions) (ExtensionSet, error) {
	err := validation.ValidateStruct(&opts,
		validation.Field(&opts.FileExtension,
			validation.Required.Error("a file extension is required for buffer sources"),
			validation.Match(reExtension).Error("must be a file extension such as .pdf"),
		),
	)
	if err != nil {
		return ExtensionSet{}, &ValidationError{Err: err}
	}
	exts := NewExtensionSet(opts.FileExtension)
	exts.Add(extensionForMIME(mediaTypeOf(opts.MIMEType)))
	return exts, nil
}

// mediaTypeOf strips parameters from a Content-Type style value.
func mediaTypeOf(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
}

var reDispositionFilename = regexp.MustCompile(`filename="?([^";]+)"?`)

// resolveResponse builds the candidate set from an HTTP response, in the
// order: override, Content-Type, Content-Disposition filename, final URL.
// body is used for content sniffing only when the server declared an opaque
// content type.
func resolveResponse(resp *http.Response, opts ConverterOptions, body io.ReadSeeker) (ExtensionSet, error) {
	exts := NewExtensionSet(opts.FileExtension)
	finalURL := responseURL(resp)

	ct := resp.Header.Get("Content-Type")
	if strings.TrimSpace(ct) == "" {
		return exts, &MissingContentTypeError{URL: finalURL}
	}
	mediaType := mediaTypeOf(ct)
	exts.Add(extensionForMIME(mediaType))

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if name := dispositionFilename(cd); name != "" {
			exts.Add(path.Ext(name))
		}
	}

	if req := resp.Request; req != nil && req.URL != nil {
		exts.Add(path.Ext(req.URL.Path))
	}

	if mediaType == "application/octet-stream" && body != nil {
		if m, err := mimetype.DetectReader(body); err == nil {
			exts.Add(m.Extension())
		}
		_, _ = body.Seek(0, io.SeekStart)
	}

	if exts.Len() == 0 {
		return exts, &UnresolvedTypeError{Path: finalURL}
	}
	return exts, nil
}

func dispositionFilename(cd string) string {
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	if m := reDispositionFilename.FindStringSubmatch(cd); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// responseURL returns the final URL of resp after redirects.
func responseURL(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}

// responseCharset extracts the charset parameter of the Content-Type header.
func responseCharset(resp *http.Response) (mediaType, charset string) {
	mt, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", ""
	}
	return mt, params["charset"]
}
