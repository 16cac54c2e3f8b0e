package charset

import (
	"bytes"
	"errors"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"utf-8", UTF8},
		{"UTF8", UTF8},
		{" utf_8 ", UTF8},
		{"latin1", Latin1},
		{"ISO8859_1", Latin1},
		{"cp1252", Win1252},
		{"Windows-1252", Win1252},
		{"shift-jis", ShiftJIS},
		{"MS932", ShiftJIS},
		{"windows-31j", ShiftJIS},
		{"x-windows-874", "windows-874"},
		{"ascii", USASCII},
		{"UnicodeLittleUnmarked", UTF16LE},
		{"gb-18030", "GB18030"},
		{"ms950", "Big5"},
		{"csISOLatin2", "ISO-8859-2"},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.input)
		if err != nil {
			t.Errorf("Canonicalize(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalize_Unknown(t *testing.T) {
	for _, name := range []string{"", "   ", "not-a-charset", "utf-9"} {
		_, err := Canonicalize(name)
		if err == nil {
			t.Errorf("Canonicalize(%q) expected error", name)
			continue
		}
		if !IsUnknownCharset(err) {
			t.Errorf("Canonicalize(%q) error = %v, want UnknownCharsetError", name, err)
		}
		var uce *UnknownCharsetError
		if !errors.As(err, &uce) || uce.Name != name {
			t.Errorf("Canonicalize(%q) error name = %v", name, err)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"UTF-8", "utf8", true},
		{"UTF-8", "UTF-8", true},
		{"ISO-8859-1", "latin1", true},
		{"MS932", "Shift_JIS", true},
		{"windows-1252", "Cp1252", true},
		{"UTF-8", "UTF-16", false},
		{"ISO-8859-1", "windows-1252", false},
		{"", "", false},
		{"UTF-8", "", false},
		{"", "UTF-8", false},
		{"bogus", "BOGUS", true},
		{"bogus", "UTF-8", false},
		{"bogus", "other-bogus", false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEqual_Symmetric(t *testing.T) {
	names := []string{"UTF-8", "utf8", "latin1", "ISO-8859-1", "cp932", "Shift_JIS", "bogus", ""}
	for _, a := range names {
		for _, b := range names {
			if Equal(a, b) != Equal(b, a) {
				t.Errorf("Equal(%q, %q) != Equal(%q, %q)", a, b, b, a)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Known() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) error = %v", name, err)
		}
	}
	if _, err := Lookup("nope"); !IsUnknownCharset(err) {
		t.Errorf("Lookup(nope) error = %v, want unknown charset", err)
	}
	if Supported("nope") {
		t.Error("Supported(nope) = true, want false")
	}
	if !Supported("utf-8") {
		t.Error("Supported(utf-8) = false, want true")
	}
}

func TestPlatformAlias(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Shift_JIS", "MS932"},
		{"windows-31j", "MS932"},
		{"windows-1252", "Cp1252"},
		{"x-windows-874", "MS874"},
		{"UTF-8", "UTF-8"},
		{"bogus", "bogus"},
	}

	for _, tt := range tests {
		if got := PlatformAlias(tt.input); got != tt.want {
			t.Errorf("PlatformAlias(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if tt.input != "bogus" && !Equal(PlatformAlias(tt.input), tt.input) {
			t.Errorf("PlatformAlias(%q) not equal to its input", tt.input)
		}
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Shift_JIS", "japan"},
		{"EUC-JP", "japan"},
		{"US-ASCII", "us"},
		{"windows-874", "thai"},
		{"EUC-KR", "korea"},
		{"GBK", "china"},
		{"Big5", "china"},
		{"windows-1252", "latin"},
		{"windows-1253", "greece"},
		{"windows-1258", "vietnam"},
		{"windows-1251", "windows"},
		{"macintosh", "mac"},
		{"IBM437", "ibm"},
		{"UTF-16LE", "unicode"},
		{"bogus", ""},
	}

	for _, tt := range tests {
		if got := Family(tt.input); got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAddCandidate(t *testing.T) {
	var list []string
	list = AddCandidate(list, "UTF-8")
	list = AddCandidate(list, "utf8")
	list = AddCandidate(list, "")
	list = AddCandidate(list, "ISO-8859-1")
	list = AddCandidate(list, "latin1")

	want := []string{"ISO-8859-1", "UTF-8"}
	if len(list) != len(want) {
		t.Fatalf("AddCandidate() = %v, want %v", list, want)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("AddCandidate()[%d] = %q, want %q", i, list[i], want[i])
		}
	}
}

func TestDetectBOM(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want BOM
	}{
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'a'}, BOMUTF8},
		{"utf16be", []byte{0xFE, 0xFF, 0, 'a'}, BOMUTF16BE},
		{"utf16le", []byte{0xFF, 0xFE, 'a', 0}, BOMUTF16LE},
		{"none", []byte("abc"), BOMNone},
		{"short", []byte{0xEF, 0xBB}, BOMNone},
		{"empty", nil, BOMNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBOM(tt.data); got != tt.want {
				t.Errorf("DetectBOM() = %v, want %v", got, tt.want)
			}
			body, b := StripBOM(tt.data)
			if b != tt.want {
				t.Errorf("StripBOM() bom = %v, want %v", b, tt.want)
			}
			if len(body) != len(tt.data)-tt.want.Len() {
				t.Errorf("StripBOM() body len = %d, want %d", len(body), len(tt.data)-tt.want.Len())
			}
		})
	}
}

func TestBOMFor(t *testing.T) {
	tests := []struct {
		input   string
		want    BOM
		wantErr bool
	}{
		{"UTF-8", BOMUTF8, false},
		{"utf-16", BOMUTF16BE, false},
		{"UTF-16BE", BOMUTF16BE, false},
		{"UTF-16LE", BOMUTF16LE, false},
		{"ISO-8859-1", BOMNone, true},
		{"bogus", BOMNone, true},
	}

	for _, tt := range tests {
		got, err := BOMFor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("BOMFor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("BOMFor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBOM_Applies(t *testing.T) {
	tests := []struct {
		bom  BOM
		enc  string
		want bool
	}{
		{BOMUTF8, "UTF-8", true},
		{BOMUTF8, "ISO-8859-1", false},
		{BOMUTF8, "UTF-16", false},
		{BOMUTF16LE, "UTF-16", true},
		{BOMUTF16BE, "UTF-16LE", true},
		{BOMUTF16BE, "UTF-8", false},
		{BOMNone, "UTF-8", false},
	}

	for _, tt := range tests {
		if got := tt.bom.Applies(tt.enc); got != tt.want {
			t.Errorf("%v.Applies(%q) = %v, want %v", tt.bom, tt.enc, got, tt.want)
		}
	}
	if !SupportsBOM("utf8") || SupportsBOM("windows-1252") {
		t.Error("SupportsBOM() family check failed")
	}
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		enc  string
		text string
	}{
		{"UTF-8", "héllo wörld"},
		{"ISO-8859-1", "héllo wörld"},
		{"windows-1252", "price: 5€"},
		{"Shift_JIS", "日本語テキスト"},
		{"EUC-JP", "日本語"},
		{"UTF-16LE", "text ✓"},
		{"GBK", "中文"},
	}

	for _, tt := range tests {
		data, err := Encode(tt.text, tt.enc)
		if err != nil {
			t.Errorf("Encode(%q) error = %v", tt.enc, err)
			continue
		}
		got, err := Decode(data, tt.enc)
		if err != nil {
			t.Errorf("Decode(%q) error = %v", tt.enc, err)
			continue
		}
		if got != tt.text {
			t.Errorf("Decode(Encode(%q)) = %q, want %q", tt.enc, got, tt.text)
		}
	}
}

func TestEncode_ReplacesUnrepresentable(t *testing.T) {
	data, err := Encode("a日b", "ISO-8859-1")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(data) != 3 || data[0] != 'a' || data[2] != 'b' {
		t.Errorf("Encode() = %v, want three bytes with substitution", data)
	}
}

func TestDecode_ConsumesBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "abc"...)
	got, err := Decode(data, "UTF-8")
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("Decode() = %q, want %q", got, "abc")
	}

	// A mark of another family is content, not a mark.
	got, err = Decode(data, "ISO-8859-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == "abc" {
		t.Errorf("Decode() consumed a UTF-8 mark under ISO-8859-1")
	}
}

func TestDecode_UTF16FollowsMark(t *testing.T) {
	le := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	got, err := Decode(le, "UTF-16")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("Decode(UTF-16 LE mark) = %q, want %q", got, "hi")
	}
}

func TestNewDecodingReader(t *testing.T) {
	data, _ := Encode("ü", "ISO-8859-1")
	r, err := NewDecodingReader(bytes.NewReader(data), "latin1")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "ü" {
		t.Errorf("NewDecodingReader() = %q, want %q", buf.String(), "ü")
	}
	if _, err := NewDecodingReader(bytes.NewReader(nil), "bogus"); err == nil {
		t.Error("NewDecodingReader(bogus) expected error")
	}
}

func TestDeclared(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  string
		want    string
	}{
		{"xml double quotes", `<?xml version="1.0" encoding="ISO-8859-1"?><a/>`, FormatXML, Latin1},
		{"xml single quotes", "<?xml version='1.0' encoding='shift_jis'?>\n<a/>", FormatXML, ShiftJIS},
		{"xml no encoding", `<?xml version="1.0"?><a/>`, FormatXML, ""},
		{"xml ignored for text", `<?xml version="1.0" encoding="ISO-8859-1"?>`, FormatText, ""},
		{"html meta charset", `<html><head><meta charset="windows-1251"></head><body></body></html>`, FormatHTML, "windows-1251"},
		{"html http-equiv", `<html><head><meta http-equiv="Content-Type" content="text/html; charset=EUC-JP"></head>`, FormatHTML, EUCJP},
		{"html latin1 stays latin1", `<meta charset="iso-8859-1">`, FormatHTML, Latin1},
		{"html meta after body", `<html><body><meta charset="EUC-KR"></body></html>`, FormatHTML, ""},
		{"html bogus label", `<meta charset="nonsense">`, FormatHTML, ""},
		{"bom wins", "\xEF\xBB\xBF<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>", FormatXML, UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Declared([]byte(tt.content), tt.format); got != tt.want {
				t.Errorf("Declared() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCharsetFromContentType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"text/html; charset=UTF-8", "UTF-8"},
		{"text/html;charset=\"koi8-r\"", "koi8-r"},
		{"text/html; charset = 'x' ", "x"},
		{"text/html", ""},
		{"text/html; charset=", ""},
	}

	for _, tt := range tests {
		if got := charsetFromContentType(tt.input); got != tt.want {
			t.Errorf("charsetFromContentType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
