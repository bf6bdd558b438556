package parser

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"smallsh/internal/clog"
	"smallsh/internal/execute"
	"smallsh/internal/slice"
)

// MaxArgs caps argv at the command plus 511 arguments. Tokens past the cap
// are dropped.
const MaxArgs = 512

// MaxLine is the longest line, newline excluded, a single read returns.
const MaxLine = 2048

// NewScanner reads r one line at a time, fgets style: a line longer than
// maxLine comes back in pieces of at most maxLine+1 bytes and each piece is
// parsed as its own line. Tokens keep their trailing newline.
func NewScanner(r io.Reader, maxLine int) *bufio.Scanner {
	if maxLine <= 0 {
		maxLine = MaxLine
	}
	limit := maxLine + 1

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, min(limit, 4096)), limit)
	s.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 && i < limit {
			return i + 1, data[:i+1], nil
		}
		if len(data) >= limit {
			return limit, data[:limit], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	})

	return s
}

// Parse turns one input line into a command. It returns nil for blank lines
// and comments.
func Parse(line []byte) *execute.Command {
	return ParseMax(line, MaxArgs)
}

// ParseMax is Parse with a custom argument cap.
func ParseMax(line []byte, maxArgs int) *execute.Command {
	return parse(line, os.Getpid(), maxArgs)
}

func parse(line []byte, pid int, maxArgs int) *execute.Command {
	s := expand(line, strconv.AppendInt(nil, int64(pid), 10))
	s = s[:slice.TrimRight(s)]

	if len(s) == 0 || s[0] == '#' {
		return nil
	}

	cmd := &execute.Command{}

	// A trailing " &" is the background operator unless nothing precedes it.
	if last := len(s) - 1; s[last] == '&' && last > 1 && s[last-1] == ' ' {
		cmd.Background = true
		s = slice.Remove(s, last-1, len(s))
	}

	args, redirs := s, s[len(s):]
	if end := nextBoundary(s, 0); end < len(s) {
		args, redirs = s[:end], s[end+1:]
	}

	argv := slice.NewBounded[string](maxArgs)
	for i := 0; i < len(args); {
		i = slice.TrimSpaces(args, i)
		if i == len(args) {
			break
		}

		end := bytes.IndexByte(args[i:], ' ')
		if end < 0 {
			end = len(args)
		} else {
			end += i
		}

		if !argv.Append(string(args[i:end])) {
			clog.Debug("argument cap %d reached, dropping %q", maxArgs, args[i:])
			break
		}
		i = end
	}
	cmd.Argv = argv.Items()

	redirect(cmd, redirs)

	return cmd
}

// expand copies line collapsing runs of spaces, dropping leading ones and
// replacing every "$$" with pid.
func expand(line []byte, pid []byte) []byte {
	out := make([]byte, 0, len(line)+len(pid))

	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == ' ':
			if len(out) > 0 && out[len(out)-1] != ' ' {
				out = append(out, ' ')
			}
		case line[i] == '$' && i+1 < len(line) && line[i+1] == '$':
			out = append(out, pid...)
			i++
		default:
			out = append(out, line[i])
		}
	}

	return out
}

// redirect reads "< file" and "> file" clauses in any order from s, which
// starts at an operator. A repeated operator overrides the earlier one.
func redirect(cmd *execute.Command, s []byte) {
	last := len(s) - 1

	for left := 0; left < last; {
		input := s[left] == '<'

		left++
		for left < last && s[left] == ' ' {
			left++
		}

		end := min(nextBoundary(s, left), last)
		name := s[left : end+1]
		name = name[:slice.TrimRight(name)]

		if len(name) > 0 {
			if input {
				cmd.InFile = string(name)
			} else {
				cmd.OutFile = string(name)
			}
		}

		left = end + 1
	}
}

// nextBoundary returns the index of the first " > " or " < " in s at or
// after i, or len(s).
func nextBoundary(s []byte, i int) int {
	for ; i+3 <= len(s); i++ {
		if s[i] == ' ' && (s[i+1] == '>' || s[i+1] == '<') && s[i+2] == ' ' {
			return i
		}
	}

	return len(s)
}
