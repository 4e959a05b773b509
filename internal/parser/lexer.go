package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rush-shell/rush/internal/word"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokWord TokenKind = iota
	TokPipe
	TokSemi
	TokNewline
	TokAndIf
	TokOrIf
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokComment
	TokEOF
)

// Token is one lexical unit of shell source.
type Token struct {
	Kind TokenKind
	Word word.Word // set when Kind == TokWord
	Text string    // set when Kind == TokComment (text after '#')
}

// Lexer tokenizes shell source text one Token at a time.
type Lexer struct {
	src []rune
	pos int
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

func (l *Lexer) peek(n int) rune {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *Lexer) skipInlineSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
}

func isWordBoundary(c rune) bool {
	switch c {
	case ' ', '\t', '\n', ';', '|', '&', '(', ')', '{', '}', '#':
		return true
	}
	return false
}

func isIdentRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Next returns the next Token in the source, or a TokEOF token when
// exhausted.
func (l *Lexer) Next() (Token, error) {
	l.skipInlineSpace()
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '\n':
		l.pos++
		return Token{Kind: TokNewline}, nil
	case ';':
		l.pos++
		return Token{Kind: TokSemi}, nil
	case '{':
		l.pos++
		return Token{Kind: TokLBrace}, nil
	case '}':
		l.pos++
		return Token{Kind: TokRBrace}, nil
	case '(':
		l.pos++
		return Token{Kind: TokLParen}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen}, nil
	case '#':
		start := l.pos + 1
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return Token{Kind: TokComment, Text: string(l.src[start:l.pos])}, nil
	case '|':
		if l.peek(1) == '|' {
			l.pos += 2
			return Token{Kind: TokOrIf}, nil
		}
		l.pos++
		return Token{Kind: TokPipe}, nil
	case '&':
		if l.peek(1) == '&' {
			l.pos += 2
			return Token{Kind: TokAndIf}, nil
		}
		return Token{}, fmt.Errorf("unexpected '&' at offset %d", l.pos)
	default:
		return l.lexWord()
	}
}

func (l *Lexer) lexWord() (Token, error) {
	var parts []word.Word
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, word.Literal(lit.String()))
			lit.Reset()
		}
	}

	for l.pos < len(l.src) && !isWordBoundary(l.src[l.pos]) {
		c := l.src[l.pos]
		switch c {
		case '\'':
			l.pos++
			start := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '\'' {
				l.pos++
			}
			if l.pos >= len(l.src) {
				return Token{}, errors.New("unterminated single quote")
			}
			lit.WriteString(string(l.src[start:l.pos]))
			l.pos++
		case '"':
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] != '"' {
				switch {
				case l.src[l.pos] == '$':
					flush()
					v, err := l.lexVarRef()
					if err != nil {
						return Token{}, err
					}
					parts = append(parts, v)
				case l.src[l.pos] == '\\' && l.pos+1 < len(l.src) && isEscapable(l.src[l.pos+1]):
					lit.WriteRune(l.src[l.pos+1])
					l.pos += 2
				default:
					lit.WriteRune(l.src[l.pos])
					l.pos++
				}
			}
			if l.pos >= len(l.src) {
				return Token{}, errors.New("unterminated double quote")
			}
			l.pos++
		case '$':
			flush()
			v, err := l.lexVarRef()
			if err != nil {
				return Token{}, err
			}
			parts = append(parts, v)
		default:
			lit.WriteRune(c)
			l.pos++
		}
	}
	flush()

	switch len(parts) {
	case 0:
		return Token{}, errors.New("empty word")
	case 1:
		return Token{Kind: TokWord, Word: parts[0]}, nil
	default:
		return Token{Kind: TokWord, Word: word.Concat(parts)}, nil
	}
}

func isEscapable(c rune) bool {
	return c == '"' || c == '\\' || c == '$'
}

// lexVarRef consumes a $VAR or ${VAR} reference. The caller has already
// verified l.src[l.pos] == '$'.
func (l *Lexer) lexVarRef() (word.Word, error) {
	l.pos++
	if l.pos < len(l.src) && l.src[l.pos] == '{' {
		l.pos++
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '}' {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return nil, errors.New("unterminated ${")
		}
		name := string(l.src[start:l.pos])
		l.pos++
		return word.Variable{Name: name}, nil
	}

	start := l.pos
	for l.pos < len(l.src) && isIdentRune(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return word.Literal("$"), nil
	}
	return word.Variable{Name: string(l.src[start:l.pos])}, nil
}
