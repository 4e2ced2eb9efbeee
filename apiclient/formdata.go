package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormData assembles a multipart/form-data body the way the backend expects
// it: scalars as plain fields, arrays and objects JSON-stringified, files
// appended under their field name.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func NewFormData() *FormData {
	return &FormData{}
}

func (f *FormData) Append(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AppendJSON stringifies v. Nil slices are sent as [] so the backend never
// receives "null" for a list.
func (f *FormData) AppendJSON(name string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if string(buf) == "null" {
		buf = []byte("[]")
	}
	f.Append(name, string(buf))
	return nil
}

func (f *FormData) AppendFile(field, filename, contentType string, data []byte) {
	f.files = append(f.files, formFile{field: field, filename: filename, contentType: contentType, data: data})
}

// Value returns the first value appended under name.
func (f *FormData) Value(name string) (string, bool) {
	for _, fld := range f.fields {
		if fld.name == name {
			return fld.value, true
		}
	}
	return "", false
}

// Filenames lists the files appended under field, in order.
func (f *FormData) Filenames(field string) []string {
	var out []string
	for _, file := range f.files {
		if file.field == field {
			out = append(out, file.filename)
		}
	}
	return out
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *FormData) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
		ct := file.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.field, err)
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
