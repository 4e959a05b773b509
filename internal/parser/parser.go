// Package parser turns shell source text into the command tree defined by
// internal/ast: simple commands, pipelines, brace groups, unbraced
// sequences, conditional pairs, function definitions and comments.
// Single and double quoting are supported; globbing, redirection,
// here-documents and subshells are not.
package parser

import (
	"errors"
	"fmt"

	"github.com/rush-shell/rush/internal/ast"
	"github.com/rush-shell/rush/internal/word"
)

// Parser consumes a token stream from a Lexer and builds an ast.Command.
type Parser struct {
	lex *Lexer
	tok Token
}

// Parse parses src as a top-level, unbraced Group of statements.
func Parse(src string) (ast.Command, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cmd, err := p.parseSequence(false)
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.lex.pos)
	}
	return cmd, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// parseSequence parses statements separated by ';' or newline into a Group.
// If stopAtRBrace is set, parsing stops (without consuming) at a '}' token,
// for use inside a brace group.
func (p *Parser) parseSequence(stopAtRBrace bool) (ast.Command, error) {
	var cmds []ast.Command
	for {
		for p.tok.Kind == TokSemi || p.tok.Kind == TokNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.tok.Kind == TokEOF {
			break
		}
		if stopAtRBrace && p.tok.Kind == TokRBrace {
			break
		}
		if p.tok.Kind == TokComment {
			cmds = append(cmds, &ast.Comment{Text: p.tok.Text})
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}

		cmd, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return &ast.Group{Commands: cmds}, nil
}

// parseStatement recognizes a `name() { ... }` function definition, falling
// back to an and/or chain of pipelines.
func (p *Parser) parseStatement() (ast.Command, error) {
	if p.tok.Kind == TokWord {
		nameWord := p.tok.Word
		savedPos := p.lex.pos
		savedTok := p.tok

		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokLParen {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.Kind == TokRParen {
				if err := p.advance(); err != nil {
					return nil, err
				}
				for p.tok.Kind == TokNewline {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
				if p.tok.Kind == TokLBrace {
					body, err := p.parseBraceGroup()
					if err != nil {
						return nil, err
					}
					return &ast.Function{Name: nameWord, Body: body}, nil
				}
			}
		}

		// Not a function definition after all; rewind and parse normally.
		p.lex.pos = savedPos
		p.tok = savedTok
	}

	return p.parseAndOr()
}

func (p *Parser) parseBraceGroup() (ast.Command, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	inner, err := p.parseSequence(true)
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokRBrace {
		return nil, errors.New("expected '}'")
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	group := inner.(*ast.Group)
	return &ast.BraceGroup{Commands: group.Commands}, nil
}

func (p *Parser) parseAndOr() (ast.Command, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokAndIf || p.tok.Kind == TokOrIf {
		op := ast.AndIf
		if p.tok.Kind == TokOrIf {
			op = ast.OrIf
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.Kind == TokNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		left = &ast.ConditionalPair{Left: left, Right: right, Operator: op}
	}
	return left, nil
}

// parsePipeline builds a right-associative chain so that a|b|c threads
// stdout to stdin down the line: Pipeline{a, Pipeline{b, c}}.
func (p *Parser) parsePipeline() (ast.Command, error) {
	left, err := p.parsePipelineStage()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind == TokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.tok.Kind == TokNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		return &ast.Pipeline{From: left, To: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePipelineStage() (ast.Command, error) {
	if p.tok.Kind == TokLBrace {
		return p.parseBraceGroup()
	}
	return p.parseSimpleCommand()
}

func (p *Parser) parseSimpleCommand() (ast.Command, error) {
	var args []word.Word
	for p.tok.Kind == TokWord {
		args = append(args, p.tok.Word)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("expected a command at offset %d", p.lex.pos)
	}
	return &ast.SimpleCommand{Arguments: args}, nil
}
