package irasm

// Lexer tokenizes program text. Newlines are significant and produce
// TokenNewline; comments run from ';' to the end of the line.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token

	startLine, startColumn int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, len(source)/4+16),
	}
}

// Tokenize returns all tokens from the source. Malformed input produces
// TokenError tokens and is reported by the parser.
func (l *Lexer) Tokenize() []Token {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startLine, l.startColumn = l.line, l.column
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case '=':
		l.addToken(TokenEqual)
	case '<':
		l.addToken(TokenLess)
	case '>':
		l.addToken(TokenGreater)
	case '[':
		l.addToken(TokenLBracket)
	case ']':
		l.addToken(TokenRBracket)
	case '(':
		l.addToken(TokenLParen)
	case ')':
		l.addToken(TokenRParen)
	case '-':
		if l.match('>') {
			l.addToken(TokenArrow)
		} else {
			l.addToken(TokenError)
		}
	case ';':
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}
	case ' ', '\r', '\t':
	case '\n':
		l.addToken(TokenNewline)
		l.line++
		l.column = 1
	case '.':
		l.word()
		l.addTokenFrom(TokenDirective, l.start+1)
	case '%':
		for isDigit(l.peek()) {
			l.advance()
		}

		l.addTokenFrom(TokenValue, l.start+1)
	case '#':
		for isImmediateChar(l.peek()) {
			l.advance()
		}

		l.addTokenFrom(TokenImmediate, l.start+1)
	case '"':
		l.quoted()
	default:
		switch {
		case isDigit(c):
			l.word()
			l.addToken(TokenNumber)
		case isAlpha(c):
			l.word()
			l.addToken(TokenIdent)
		default:
			l.addToken(TokenError)
		}
	}
}

// quoted keeps the quotes and escapes; the parser unquotes.
func (l *Lexer) quoted() {
	for !l.isAtEnd() && l.peek() != '"' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}

		l.advance()
	}

	if !l.match('"') {
		l.addToken(TokenError)
		return
	}

	l.addToken(TokenString)
}

func (l *Lexer) word() {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) addToken(kind TokenKind) {
	l.addTokenFrom(kind, l.start)
}

func (l *Lexer) addTokenFrom(kind TokenKind, from int) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[from:l.pos],
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	l.column++

	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}

	l.advance()

	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}

	return l.source[l.pos]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// isImmediateChar accepts signs, exponents, dots and type suffixes.
func isImmediateChar(c byte) bool {
	return isDigit(c) || isAlpha(c) || c == '.' || c == '-' || c == '+'
}
