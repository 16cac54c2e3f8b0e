// Package charset resolves encoding names to a single canonical spelling and
// provides the codecs, byte-order marks and content-declared charset sniffing
// used by the encoding state engine.
//
// Equality is always decided on canonical names. Display aliases
// (PlatformAlias) never take part in equality.
package charset

import (
	"sort"
	"strings"

	gencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Well-known canonical names.
const (
	UTF8     = "UTF-8"
	UTF16    = "UTF-16"
	UTF16BE  = "UTF-16BE"
	UTF16LE  = "UTF-16LE"
	UTF32    = "UTF-32"
	UTF32BE  = "UTF-32BE"
	UTF32LE  = "UTF-32LE"
	USASCII  = "US-ASCII"
	Latin1   = "ISO-8859-1"
	ShiftJIS = "Shift_JIS"
	EUCJP    = "EUC-JP"
	Win1252  = "windows-1252"
)

type entry struct {
	name    string
	enc     encoding.Encoding
	aliases []string
}

// registry holds the encodings with a fixed canonical spelling. Names not
// listed here are still resolved through the IANA and WHATWG indexes.
var registry = []entry{
	{UTF8, unicode.UTF8, []string{"utf8", "unicode-1-1-utf-8", "x-unicode20utf8"}},
	{UTF16, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), []string{"utf16", "unicode"}},
	{UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), []string{"unicodebigunmarked", "x-utf-16be"}},
	{UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), []string{"unicodelittleunmarked", "x-utf-16le"}},
	{UTF32, utf32.UTF32(utf32.BigEndian, utf32.UseBOM), []string{"utf32"}},
	{UTF32BE, utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), []string{"x-utf-32be"}},
	{UTF32LE, utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), []string{"x-utf-32le"}},
	{USASCII, gencoding.ASCII, []string{"ascii", "us", "iso646-us", "ansi_x3.4-1968", "ansi_x3.4-1986", "cp367", "ibm367", "646", "csascii"}},
	{Latin1, charmap.ISO8859_1, []string{"latin1", "l1", "iso8859_1", "iso_8859-1", "iso_8859-1:1987", "8859_1", "cp819", "ibm819", "csisolatin1"}},
	{"ISO-8859-2", charmap.ISO8859_2, []string{"latin2", "l2", "iso8859_2", "iso_8859-2"}},
	{"ISO-8859-5", charmap.ISO8859_5, []string{"cyrillic", "iso8859_5", "iso_8859-5"}},
	{"ISO-8859-7", charmap.ISO8859_7, []string{"greek", "iso8859_7", "iso_8859-7"}},
	{"ISO-8859-9", charmap.ISO8859_9, []string{"latin5", "l5", "iso8859_9", "iso_8859-9"}},
	{"ISO-8859-15", charmap.ISO8859_15, []string{"latin9", "latin-9", "iso8859_15", "iso_8859-15"}},
	{"windows-874", charmap.Windows874, []string{"ms874", "x-windows-874", "cp874"}},
	{"windows-1250", charmap.Windows1250, []string{"cp1250"}},
	{"windows-1251", charmap.Windows1251, []string{"cp1251"}},
	{Win1252, charmap.Windows1252, []string{"cp1252"}},
	{"windows-1253", charmap.Windows1253, []string{"cp1253"}},
	{"windows-1254", charmap.Windows1254, []string{"cp1254"}},
	{"windows-1255", charmap.Windows1255, []string{"cp1255"}},
	{"windows-1256", charmap.Windows1256, []string{"cp1256"}},
	{"windows-1257", charmap.Windows1257, []string{"cp1257"}},
	{"windows-1258", charmap.Windows1258, []string{"cp1258"}},
	{"KOI8-R", charmap.KOI8R, []string{"koi8", "cskoi8r"}},
	{"KOI8-U", charmap.KOI8U, nil},
	{"IBM437", charmap.CodePage437, []string{"cp437", "437"}},
	{"IBM866", charmap.CodePage866, []string{"cp866", "866"}},
	{"macintosh", charmap.Macintosh, []string{"mac", "macroman", "x-mac-roman"}},
	// x/text's Shift JIS decoder covers the Microsoft extensions, so the
	// vendor spellings collapse onto one canonical name.
	{ShiftJIS, japanese.ShiftJIS, []string{"sjis", "x-sjis", "ms_kanji", "csshiftjis", "windows-31j", "ms932", "cp932", "x-ms932"}},
	{EUCJP, japanese.EUCJP, []string{"eucjp", "x-euc-jp", "cseucpkdfmtjapanese"}},
	{"ISO-2022-JP", japanese.ISO2022JP, []string{"jis", "csiso2022jp"}},
	{"EUC-KR", korean.EUCKR, []string{"euckr", "ks_c_5601-1987", "ksc5601", "cseuckr", "ms949", "cp949", "x-windows-949", "windows-949"}},
	{"GBK", simplifiedchinese.GBK, []string{"cp936", "ms936", "windows-936", "gb2312", "x-gbk", "csgb2312"}},
	{"GB18030", simplifiedchinese.GB18030, []string{"gb-18030"}},
	{"HZ-GB-2312", simplifiedchinese.HZGB2312, []string{"hz"}},
	{"Big5", traditionalchinese.Big5, []string{"big5-hkscs", "cp950", "ms950", "x-windows-950", "csbig5"}},
}

var byKey = buildIndex()

func buildIndex() map[string]*entry {
	idx := make(map[string]*entry, len(registry)*4)
	for i := range registry {
		e := &registry[i]
		idx[key(e.name)] = e
		for _, a := range e.aliases {
			idx[key(a)] = e
		}
	}
	return idx
}

// key folds case and drops separators so that "Shift-JIS", "shift_jis" and
// "SHIFTJIS" share one index slot.
func key(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, name)
}

// Canonicalize resolves any accepted spelling of an encoding to its canonical
// name. Unrecognized or unsupported names return an *UnknownCharsetError.
func Canonicalize(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &UnknownCharsetError{Name: name}
	}
	if e, ok := byKey[key(trimmed)]; ok {
		return e.name, nil
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(trimmed)
		if err != nil {
			return "", &UnknownCharsetError{Name: name, Err: err}
		}
	}
	if enc == nil {
		return "", &UnknownCharsetError{Name: name}
	}
	return nameOf(name, enc)
}

func nameOf(original string, enc encoding.Encoding) (string, error) {
	n, err := ianaindex.MIME.Name(enc)
	if err != nil {
		n, err = ianaindex.IANA.Name(enc)
		if err != nil {
			return "", &UnknownCharsetError{Name: original, Err: err}
		}
	}
	if e, ok := byKey[key(n)]; ok {
		return e.name, nil
	}
	return n, nil
}

// MustCanonicalize is like Canonicalize but panics on unknown names. It is
// meant for package-level constants and tests.
func MustCanonicalize(name string) string {
	c, err := Canonicalize(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Equal reports whether a and b name the same encoding. It is false when
// either name is empty, and an unknown name is equal only to a spelling that
// matches it case-insensitively.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	ca, err := Canonicalize(a)
	if err != nil {
		return false
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// Lookup returns the codec for name.
func Lookup(name string) (encoding.Encoding, error) {
	c, err := Canonicalize(name)
	if err != nil {
		return nil, err
	}
	if e, ok := byKey[key(c)]; ok {
		return e.enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(c)
	if err == nil && enc != nil {
		return enc, nil
	}
	enc, err = htmlindex.Get(c)
	if err != nil || enc == nil {
		return nil, &UnknownCharsetError{Name: name, Err: err}
	}
	return enc, nil
}

// Supported reports whether name resolves to a usable codec.
func Supported(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Known returns the canonical names of the built-in registry, sorted.
func Known() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// platformAliases maps canonical names to the spelling the Windows Java
// runtime reports as its default encoding.
var platformAliases = map[string]string{
	ShiftJIS:       "MS932",
	"windows-874":  "MS874",
	"windows-1250": "Cp1250",
	"windows-1251": "Cp1251",
	Win1252:        "Cp1252",
	"windows-1253": "Cp1253",
	"windows-1254": "Cp1254",
	"windows-1255": "Cp1255",
	"windows-1256": "Cp1256",
	"windows-1257": "Cp1257",
	"windows-1258": "Cp1258",
}

// PlatformAlias returns the vendor-preferred spelling of name, or name itself
// when it has none. The result is for display and defaults only.
func PlatformAlias(name string) string {
	c, err := Canonicalize(name)
	if err != nil {
		return name
	}
	if alias, ok := platformAliases[c]; ok {
		return alias
	}
	return name
}

// Family returns a coarse language or vendor family for name, such as
// "japan", "latin" or "unicode". It returns "" for unknown names.
func Family(name string) string {
	c, err := Canonicalize(name)
	if err != nil {
		return ""
	}
	n := strings.ToLower(c)
	switch {
	case n == "shift_jis" || strings.Contains(n, "jp") || strings.Contains(n, "jis"):
		return "japan"
	case n == "us-ascii":
		return "us"
	case strings.Contains(n, "874"):
		return "thai"
	case strings.Contains(n, "949") || strings.HasSuffix(n, "kr"):
		return "korea"
	case strings.Contains(n, "950") || strings.Contains(n, "big5") || strings.HasPrefix(n, "gb") ||
		strings.HasPrefix(n, "hz") || strings.Contains(n, "cn"):
		return "china"
	case strings.Contains(n, "1252") || strings.Contains(n, "8859"):
		return "latin"
	case strings.Contains(n, "1253"):
		return "greece"
	case strings.Contains(n, "1254") || strings.Contains(n, "857"):
		return "turkey"
	case strings.Contains(n, "1258"):
		return "vietnam"
	case strings.Contains(n, "windows"):
		return "windows"
	case strings.Contains(n, "mac"):
		return "mac"
	case strings.Contains(n, "ibm"):
		return "ibm"
	case strings.Contains(n, "utf"):
		return "unicode"
	}
	return ""
}

// AddCandidate appends name to list unless an equal name is already present,
// then sorts the list. Empty names are ignored.
func AddCandidate(list []string, name string) []string {
	if name == "" {
		return list
	}
	for _, e := range list {
		if Equal(e, name) {
			return list
		}
	}
	list = append(list, name)
	sort.Strings(list)
	return list
}
