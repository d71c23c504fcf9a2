package multipart

import (
	"bytes"
	"testing"
)

// buildBody constructs a valid multipart/form-data body for tests. fields is
// ordered name/value pairs; file may be nil.
func buildBody(boundary string, fields [][2]string, file *File) []byte {
	var b bytes.Buffer
	for _, f := range fields {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + f[0] + `"` + "\r\n\r\n")
		b.WriteString(f[1] + "\r\n")
	}
	if file != nil {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + file.FieldName + `"; filename="` + file.Filename + `"` + "\r\n")
		b.WriteString("Content-Type: application/octet-stream\r\n\r\n")
		b.Write(file.Data)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.Bytes()
}

func TestParseForm_FieldsAndFile(t *testing.T) {
	fileData := []byte{0x00, 0x01, '\r', '\n', '\r', '\n', 0xFF, 0xFE, '-', '-'}
	body := buildBody("X-b7f3", [][2]string{
		{"title", "My video"},
		{"description", "Привіт, світе! 🌍"},
		{"isShort", "true"},
	}, &File{FieldName: "video", Filename: "clip.mp4", Data: fileData})

	form := ParseForm(body, "X-b7f3")

	if len(form.Fields) != 3 {
		t.Fatalf("Fields count = %d, want 3", len(form.Fields))
	}
	if form.Fields["title"] != "My video" {
		t.Errorf("title = %q", form.Fields["title"])
	}
	if form.Fields["description"] != "Привіт, світе! 🌍" {
		t.Errorf("description = %q, UTF-8 not preserved", form.Fields["description"])
	}
	if form.Fields["isShort"] != "true" {
		t.Errorf("isShort = %q", form.Fields["isShort"])
	}
	if form.File == nil {
		t.Fatal("File = nil, want file part")
	}
	if form.File.FieldName != "video" || form.File.Filename != "clip.mp4" {
		t.Errorf("file descriptor = %q/%q", form.File.FieldName, form.File.Filename)
	}
	if !bytes.Equal(form.File.Data, fileData) {
		t.Errorf("file data = %v, want %v", form.File.Data, fileData)
	}
}

func TestParseForm_NoFile(t *testing.T) {
	body := buildBody("bnd", [][2]string{{"a", "1"}, {"b", ""}}, nil)
	form := ParseForm(body, "bnd")
	if form.File != nil {
		t.Errorf("File = %+v, want nil", form.File)
	}
	if form.Fields["a"] != "1" || form.Fields["b"] != "" {
		t.Errorf("Fields = %v", form.Fields)
	}
}

func TestParseForm_LastFileWins(t *testing.T) {
	boundary := "bnd"
	var b bytes.Buffer
	b.Write(buildBody(boundary, nil, &File{FieldName: "f1", Filename: "a.bin", Data: []byte("first")}))
	b.Truncate(b.Len() - len("--"+boundary+"--\r\n"))
	b.Write(buildBody(boundary, nil, &File{FieldName: "f2", Filename: "b.bin", Data: []byte("second")}))

	form := ParseForm(b.Bytes(), boundary)
	if form.File == nil || form.File.Filename != "b.bin" || string(form.File.Data) != "second" {
		t.Errorf("File = %+v, want last file part", form.File)
	}
}

func TestParseForm_PartWithoutNameSkipped(t *testing.T) {
	boundary := "bnd"
	body := []byte("--" + boundary + "\r\n" +
		"Content-Disposition: form-data\r\n\r\n" +
		"ignored\r\n" +
		"--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="kept"` + "\r\n\r\n" +
		"yes\r\n" +
		"--" + boundary + "--\r\n")

	form := ParseForm(body, boundary)
	if len(form.Fields) != 1 || form.Fields["kept"] != "yes" {
		t.Errorf("Fields = %v, want only kept=yes", form.Fields)
	}
}

func TestParseForm_PartWithoutHeaderSeparatorSkipped(t *testing.T) {
	boundary := "bnd"
	body := []byte("--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="broken"` + "\r\n" + // no blank line
		"--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="ok"` + "\r\n\r\n" +
		"fine\r\n" +
		"--" + boundary + "--\r\n")

	form := ParseForm(body, boundary)
	if form.Fields["ok"] != "fine" {
		t.Errorf("Fields = %v, want ok=fine", form.Fields)
	}
	if _, found := form.Fields["broken"]; found {
		t.Error("part without header separator was not skipped")
	}
}

func TestParseForm_DegradesGracefully(t *testing.T) {
	cases := map[string]struct {
		body     []byte
		boundary string
	}{
		"empty body":        {nil, "bnd"},
		"no boundary token": {buildBody("bnd", [][2]string{{"a", "1"}}, nil), ""},
		"boundary absent":   {[]byte("random bytes without any delimiter"), "bnd"},
		"only one boundary": {[]byte("--bnd\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\n1\r\n"), "bnd"},
		"binary garbage":    {[]byte{0x00, 0xFF, 0x0D, 0x0A, 0x2D, 0x2D}, "bnd"},
	}
	for name, tc := range cases {
		form := ParseForm(tc.body, tc.boundary)
		if form == nil {
			t.Fatalf("%s: ParseForm returned nil", name)
		}
		if len(form.Fields) != 0 || form.File != nil {
			t.Errorf("%s: got %v / %+v, want empty result", name, form.Fields, form.File)
		}
	}
}

func TestParseForm_TruncatedKeepsCompleteParts(t *testing.T) {
	body := buildBody("bnd", [][2]string{{"first", "one"}, {"second", "two"}}, nil)
	// Cutting inside the second value removes that part's closing delimiter.
	cut := bytes.Index(body, []byte("two"))
	form := ParseForm(body[:cut], "bnd")
	if form.Fields["first"] != "one" {
		t.Errorf("first = %q, want complete part recovered", form.Fields["first"])
	}
	if _, found := form.Fields["second"]; found {
		t.Error("truncated part should be dropped, not partially decoded")
	}
}

func TestBoundary(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"multipart/form-data; boundary=----WebKitFormBoundaryX7", "----WebKitFormBoundaryX7"},
		{`multipart/form-data; boundary="quoted"`, "quoted"},
		{"multipart/form-data; boundary=abc; charset=utf-8", "abc"},
		{"application/json", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Boundary(tc.header); got != tc.want {
			t.Errorf("Boundary(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
