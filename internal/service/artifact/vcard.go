// Package artifact derives shareable outputs from a card: vCard text,
// the public URL and QR code images. Everything here is pure.
package artifact

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/janisto/echo-cards/internal/service/profile"
)

const (
	crlf = "\r\n"
	// maxLineOctets is the content line length before folding (RFC 6350 3.2).
	maxLineOctets = 75
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", `\,`,
	";", `\;`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// VCard renders p as a vCard 3.0 document with CRLF line endings.
// Empty values are skipped; only the first address is exported.
func VCard(p *profile.Profile) []byte {
	var w vcardWriter
	w.line("BEGIN:VCARD")
	w.line("VERSION:3.0")

	name := escapeText(p.Name)
	w.line("N:" + name + ";;;;")
	w.line("FN:" + name)

	w.prop("ORG", escapeText(p.Company))
	w.prop("TITLE", escapeText(p.Role))
	w.prop("TEL;TYPE=CELL", stripSpaces(p.PhoneMobile))
	w.prop("TEL;TYPE=WORK", stripSpaces(p.PhoneOffice))
	for _, email := range p.Emails {
		w.prop("EMAIL;TYPE=INTERNET", strings.TrimSpace(email))
	}
	for _, site := range p.Websites {
		w.prop("URL", EnsureHTTP(site))
	}
	if len(p.Addresses) > 0 {
		if street := escapeText(strings.TrimSpace(p.Addresses[0])); street != "" {
			w.line("ADR;TYPE=WORK:;;" + street + ";;;;")
		}
	}
	w.prop("NOTE", escapeText(strings.TrimSpace(p.Bio)))

	w.line("END:VCARD")
	return w.buf.Bytes()
}

type vcardWriter struct {
	buf bytes.Buffer
}

func (w *vcardWriter) prop(name, value string) {
	if value == "" {
		return
	}
	w.line(name + ":" + value)
}

// line writes a content line, folding it at maxLineOctets without
// splitting a UTF-8 sequence.
func (w *vcardWriter) line(s string) {
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		w.buf.WriteString(s[:cut])
		w.buf.WriteString(crlf)
		w.buf.WriteByte(' ')
		s = s[cut:]
		limit = maxLineOctets - 1
	}
	w.buf.WriteString(s)
	w.buf.WriteString(crlf)
}

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
