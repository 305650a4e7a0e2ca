package extract

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokName
	tokArray
	tokArrayEnd
	tokDict
	tokOperator
)

type token struct {
	kind  tokenKind
	text  string
	num   float64
	elems []token
}

// kerningSpace is the TJ displacement, in thousandths of an em, beyond
// which a gap is read as a word break.
const kerningSpace = -200

// contentLexer tokenizes a PDF page content stream.
type contentLexer struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFSpace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *contentLexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *contentLexer) next() token {
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.data) {
			return token{kind: tokEOF}
		}

		c := l.data[l.pos]
		switch {
		case c == '(':
			return token{kind: tokString, text: decodePDFText(l.literalString())}
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokDict}
			}
			return token{kind: tokString, text: decodePDFText(l.hexString())}
		case c == '[':
			l.pos++
			return l.array()
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}
		case c == '/':
			l.pos++
			return token{kind: tokName, text: l.regular()}
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			raw := l.regular()
			if num, err := strconv.ParseFloat(raw, 64); err == nil {
				return token{kind: tokNumber, text: raw, num: num}
			}
			return token{kind: tokOperator, text: raw}
		default:
			if word := l.regular(); word != "" {
				return token{kind: tokOperator, text: word}
			}
			// stray delimiter such as '>' or '{'
			l.pos++
		}
	}
}

func (l *contentLexer) array() token {
	arr := token{kind: tokArray}
	for {
		tok := l.next()
		if tok.kind == tokEOF || tok.kind == tokArrayEnd {
			return arr
		}
		arr.elems = append(arr.elems, tok)
	}
}

func (l *contentLexer) literalString() []byte {
	var out []byte
	depth := 0
	for ; l.pos < len(l.data); l.pos++ {
		c := l.data[l.pos]
		switch c {
		case '(':
			depth++
			if depth == 1 {
				continue
			}
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return out
			}
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return out
			}
			out = l.escape(out)
			continue
		}
		out = append(out, c)
	}
	return out
}

// escape decodes the escape sequence at l.pos, leaving l.pos on its last byte.
func (l *contentLexer) escape(out []byte) []byte {
	c := l.data[l.pos]
	switch c {
	case 'n':
		return append(out, '\n')
	case 'r':
		return append(out, '\r')
	case 't':
		return append(out, '\t')
	case 'b':
		return append(out, '\b')
	case 'f':
		return append(out, '\f')
	case '\r':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
			l.pos++
		}
		return out
	case '\n':
		return out
	}
	if c >= '0' && c <= '7' {
		val := int(c - '0')
		for i := 0; i < 2 && l.pos+1 < len(l.data); i++ {
			d := l.data[l.pos+1]
			if d < '0' || d > '7' {
				break
			}
			l.pos++
			val = val*8 + int(d-'0')
		}
		return append(out, byte(val))
	}
	return append(out, c)
}

func (l *contentLexer) hexString() []byte {
	l.pos++
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		b, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(b))
	}
	return out
}

// skipInlineImage jumps past inline image data up to its EI operator.
func (l *contentLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isPDFSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isPDFSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// decodePDFText decodes UTF-16BE strings carrying a byte order mark and
// treats everything else as Windows-1252.
func decodePDFText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// textWriter accumulates shown text and line breaks.
type textWriter struct {
	sb strings.Builder
}

func (w *textWriter) text(s string) {
	w.sb.WriteString(s)
}

func (w *textWriter) newline() {
	if w.sb.Len() > 0 {
		w.sb.WriteByte('\n')
	}
}

func (w *textWriter) space() {
	s := w.sb.String()
	if s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte(' ')
	}
}

func (w *textWriter) String() string {
	lines := strings.Split(w.sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// contentStreamText extracts the text shown by a page content stream. Line
// breaks follow the text positioning operators.
func contentStreamText(data []byte) string {
	lex := &contentLexer{data: data}
	var w textWriter
	var operands []token
	var lastLineY float64
	haveLineY := false

	lastString := func() (string, bool) {
		if n := len(operands); n > 0 && operands[n-1].kind == tokString {
			return operands[n-1].text, true
		}
		return "", false
	}
	lastNumber := func(fromEnd int) float64 {
		if n := len(operands); n >= fromEnd && operands[n-fromEnd].kind == tokNumber {
			return operands[n-fromEnd].num
		}
		return 0
	}

	for {
		tok := lex.next()
		if tok.kind == tokEOF {
			return w.String()
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if s, ok := lastString(); ok {
				w.text(s)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				for _, elem := range operands[n-1].elems {
					switch {
					case elem.kind == tokString:
						w.text(elem.text)
					case elem.kind == tokNumber && elem.num < kerningSpace:
						w.space()
					}
				}
			}
		case "'", "\"":
			w.newline()
			if s, ok := lastString(); ok {
				w.text(s)
			}
		case "Td", "TD":
			if lastNumber(1) != 0 {
				w.newline()
			} else {
				w.space()
			}
		case "T*":
			w.newline()
		case "Tm":
			y := lastNumber(1)
			if haveLineY && y != lastLineY {
				w.newline()
			} else if haveLineY {
				w.space()
			}
			lastLineY, haveLineY = y, true
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}
}
