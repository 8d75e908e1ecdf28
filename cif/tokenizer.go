/*
 * tokenizer.go, part of gophonon.
 *
 * Copyright 2024 The gophonon Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package cif

import (
	"bufio"
	"io"
	"strings"
)

// a CIF token, with the line where it starts
type token struct {
	val    string
	line   int
	quoted bool //quoted strings and text fields are never tags or keywords
}

// is the token a data name (a tag)?
func (t token) isTag() bool {
	return !t.quoted && strings.HasPrefix(t.val, "_")
}

// is the token one of the reserved words that end a loop?
func (t token) isKeyword() bool {
	if t.quoted {
		return false
	}
	l := strings.ToLower(t.val)
	return l == "loop_" || strings.HasPrefix(l, "data_") || strings.HasPrefix(l, "save_") || l == "global_" || l == "stop_"
}

// tokenize splits a CIF in tokens. It understands comments, single and
// double quoted strings and semicolon-delimited text fields.
func tokenize(r io.Reader) ([]token, error) {
	ret := make([]token, 0, 256)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	nline := 0
	intext := false
	var text strings.Builder
	textline := 0
	for s.Scan() {
		nline++
		line := strings.TrimRight(s.Text(), "\r")
		if intext {
			if strings.HasPrefix(line, ";") {
				ret = append(ret, token{strings.TrimSuffix(text.String(), "\n"), textline, true})
				intext = false
				line = line[1:] //whatever follows the closing semicolon is tokenized normally
			} else {
				text.WriteString(line)
				text.WriteString("\n")
				continue
			}
		} else if strings.HasPrefix(line, ";") {
			intext = true
			textline = nline
			text.Reset()
			if rest := line[1:]; strings.TrimSpace(rest) != "" {
				text.WriteString(rest)
				text.WriteString("\n")
			}
			continue
		}
		toks, err := tokenizeLine(line, nline)
		if err != nil {
			return nil, err
		}
		ret = append(ret, toks...)
	}
	if err := s.Err(); err != nil {
		return nil, Error{err.Error(), nline, []string{"tokenize"}}
	}
	if intext {
		return nil, Error{"Unterminated text field", textline, []string{"tokenize"}}
	}
	return ret, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func tokenizeLine(line string, nline int) ([]token, error) {
	var ret []token
	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			break
		}
		c := line[i]
		if c == '#' {
			break
		}
		if c == '\'' || c == '"' {
			// A quote only closes the string if followed by whitespace or the end of the line,
			// so "'O'Brien'" is a valid string.
			j := i + 1
			for {
				if j >= len(line) {
					return nil, Error{"Unterminated quoted string", nline, []string{"tokenizeLine"}}
				}
				if line[j] == c && (j+1 == len(line) || isSpace(line[j+1])) {
					break
				}
				j++
			}
			ret = append(ret, token{line[i+1 : j], nline, true})
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && !isSpace(line[j]) {
			j++
		}
		ret = append(ret, token{line[i:j], nline, false})
		i = j
	}
	return ret, nil
}
