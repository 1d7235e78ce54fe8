// Package irasm reads the textual program form written by ir.Dump.
package irasm

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline

	TokenIdent     // Phi, block0, InvocationId, true
	TokenDirective // .stage
	TokenNumber    // 16, 0x1008
	TokenImmediate // #16, #0.5f, #7u8
	TokenValue     // %3
	TokenString    // "text"

	TokenComma    // ,
	TokenColon    // :
	TokenArrow    // ->
	TokenEqual    // =
	TokenLess     // <
	TokenGreater  // >
	TokenLBracket // [
	TokenRBracket // ]
	TokenLParen   // (
	TokenRParen   // )
)

var tokenNames = [...]string{
	TokenEOF:       "end of input",
	TokenError:     "invalid character",
	TokenNewline:   "end of line",
	TokenIdent:     "identifier",
	TokenDirective: "directive",
	TokenNumber:    "number",
	TokenImmediate: "immediate",
	TokenValue:     "value",
	TokenString:    "string",
	TokenComma:     "','",
	TokenColon:     "':'",
	TokenArrow:     "'->'",
	TokenEqual:     "'='",
	TokenLess:      "'<'",
	TokenGreater:   "'>'",
	TokenLBracket:  "'['",
	TokenRBracket:  "']'",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// Token is a lexeme with its source position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}
