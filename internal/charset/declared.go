package charset

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	htmlcharset "golang.org/x/net/html/charset"
)

// Declaration formats understood by Declared.
const (
	FormatText = ""
	FormatXML  = "xml"
	FormatHTML = "html"
)

// declaredScanLimit bounds how much of the content is searched for an
// in-document declaration.
const declaredScanLimit = 1024

var xmlDeclRE = regexp.MustCompile(`^\s*<\?xml\s[^>]*?encoding\s*=\s*["']([A-Za-z][A-Za-z0-9._:\-]*)["']`)

// Declared returns the charset the content declares about itself, or "".
// A byte-order mark wins over any in-document declaration. format selects
// which in-document declaration is honored.
func Declared(content []byte, format string) string {
	if b := DetectBOM(content); b != BOMNone {
		return b.Encoding()
	}
	if len(content) > declaredScanLimit {
		content = content[:declaredScanLimit]
	}
	switch format {
	case FormatXML:
		return DeclaredXML(content)
	case FormatHTML:
		return DeclaredHTML(content)
	}
	return ""
}

// DeclaredXML returns the encoding named in an XML prolog, or "".
func DeclaredXML(content []byte) string {
	m := xmlDeclRE.FindSubmatch(content)
	if m == nil {
		return ""
	}
	return canonicalOrRaw(string(m[1]))
}

// DeclaredHTML returns the charset named by a <meta> tag before <body>, or "".
// Labels outside the built-in registry are resolved through the WHATWG
// encoding index.
func DeclaredHTML(content []byte) string {
	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "body":
				return ""
			case "meta":
				if !hasAttr {
					continue
				}
				if label := metaCharset(z); label != "" {
					if c, err := Canonicalize(label); err == nil {
						return c
					}
					if _, n := htmlcharset.Lookup(label); n != "" {
						return canonicalOrRaw(n)
					}
				}
			}
		}
	}
}

func metaCharset(z *html.Tokenizer) string {
	var charsetAttr, httpEquiv, content string
	for {
		k, v, more := z.TagAttr()
		switch strings.ToLower(string(k)) {
		case "charset":
			charsetAttr = strings.TrimSpace(string(v))
		case "http-equiv":
			httpEquiv = strings.ToLower(strings.TrimSpace(string(v)))
		case "content":
			content = string(v)
		}
		if !more {
			break
		}
	}
	if charsetAttr != "" {
		return charsetAttr
	}
	if httpEquiv == "content-type" {
		return charsetFromContentType(content)
	}
	return ""
}

// charsetFromContentType extracts the charset parameter of a media type such
// as "text/html; charset=Shift_JIS".
func charsetFromContentType(s string) string {
	lower := strings.ToLower(s)
	i := strings.Index(lower, "charset")
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(s[i+len("charset"):], " \t")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if rest == "" {
		return ""
	}
	if q := rest[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(rest[1:], q); end >= 0 {
			return rest[1 : end+1]
		}
		return ""
	}
	if end := strings.IndexAny(rest, "; \t"); end >= 0 {
		return rest[:end]
	}
	return rest
}

func canonicalOrRaw(name string) string {
	if c, err := Canonicalize(name); err == nil {
		return c
	}
	return name
}
