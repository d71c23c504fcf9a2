// Package multipart decodes multipart/form-data request bodies from raw
// bytes. It is deliberately tolerant: malformed parts are skipped, truncated
// input ends the scan, and nothing here ever returns an error — callers
// validate the resulting field set instead.
package multipart

import (
	"bytes"
	"regexp"
	"strings"
)

// File is the single file payload carried by a form. Data holds the exact
// uploaded bytes, untouched.
type File struct {
	FieldName string
	Filename  string
	Data      []byte
}

// Form is the decoded result: UTF-8 text fields plus at most one file. When
// a body carries several file parts, the last one wins.
type Form struct {
	Fields map[string]string
	File   *File
}

var (
	nameRe     = regexp.MustCompile(`name="([^"]+)"`)
	filenameRe = regexp.MustCompile(`filename="([^"]+)"`)
)

// Boundary extracts the boundary token from a Content-Type header value.
// Returns "" when the header carries no boundary parameter.
func Boundary(contentType string) string {
	_, token, ok := strings.Cut(contentType, "boundary=")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(token, ';'); i >= 0 {
		token = token[:i]
	}
	return strings.Trim(strings.TrimSpace(token), `"`)
}

// ParseForm scans body for parts delimited by "--"+boundary and decodes each
// into a text field or the file payload. Parts without a name="…" token, and
// parts without a header/body separator, are skipped. A missing or trailing
// boundary terminates the scan; the fields gathered so far are returned.
func ParseForm(body []byte, boundary string) *Form {
	form := &Form{Fields: make(map[string]string)}
	if boundary == "" {
		return form
	}
	delim := []byte("--" + boundary)

	pos := 0
	for pos < len(body) {
		start := bytes.Index(body[pos:], delim)
		if start < 0 {
			break
		}
		start += pos
		rest := start + len(delim)
		next := bytes.Index(body[rest:], delim)
		if next < 0 {
			break
		}
		next += rest
		part := body[rest:next]
		pos = next

		headerEnd := bytes.Index(part, []byte("\r\n\r\n"))
		if headerEnd < 0 {
			continue
		}
		header := string(part[:headerEnd])
		content := part[headerEnd+4:]
		// Drop the CRLF that precedes the next boundary.
		if len(content) >= 2 {
			content = content[:len(content)-2]
		} else {
			content = nil
		}

		nm := nameRe.FindStringSubmatch(header)
		if nm == nil {
			continue
		}
		fieldName := nm[1]

		if strings.Contains(header, `filename="`) {
			filename := "file"
			if fm := filenameRe.FindStringSubmatch(header); fm != nil {
				filename = fm[1]
			}
			data := make([]byte, len(content))
			copy(data, content)
			form.File = &File{FieldName: fieldName, Filename: filename, Data: data}
		} else {
			form.Fields[fieldName] = string(content)
		}
	}
	return form
}
