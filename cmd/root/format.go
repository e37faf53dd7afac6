package root

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Kirov7/CouloyLite/resp/reply"
)

// FormatReply renders a reply the way redis-cli prints it
func FormatReply(r reply.Reply) string {
	var sb strings.Builder
	formatReply(&sb, r, "")
	return sb.String()
}

func formatReply(sb *strings.Builder, r reply.Reply, indent string) {
	switch r := r.(type) {
	case *reply.StatusReply:
		sb.WriteString(r.Status)
	case reply.ErrorReply:
		sb.WriteString("(error) ")
		sb.WriteString(r.Error())
	case *reply.IntReply:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(r.Code, 10))
	case *reply.BulkReply:
		sb.WriteString(strconv.Quote(string(r.Arg)))
	case *reply.NullBulkReply:
		sb.WriteString("(nil)")
	case *reply.MultiRawReply:
		if len(r.Replies) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(r.Replies)))
		for i, item := range r.Replies {
			if i > 0 {
				sb.WriteString("\n")
				sb.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			sb.WriteString(prefix)
			formatReply(sb, item, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		sb.WriteString(strings.TrimSuffix(string(r.ToBytes()), reply.CRLF))
	}
}

// SplitLine breaks a shell line into command words. Double quoted words
// understand \n \r \t \" \\ and \xHH, single quoted words are taken as is.
func SplitLine(line string) ([]string, error) {
	var words []string
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return words, nil
		}

		var word []byte
		var inDouble, inSingle bool
	scan:
		for ; i < len(line); i++ {
			c := line[i]
			switch {
			case inDouble:
				switch c {
				case '"':
					inDouble = false
				case '\\':
					n, esc, err := unescape(line[i:])
					if err != nil {
						return nil, err
					}
					word = append(word, esc)
					i += n - 1
				default:
					word = append(word, c)
				}
			case inSingle:
				if c == '\'' {
					inSingle = false
				} else {
					word = append(word, c)
				}
			case c == '"':
				inDouble = true
			case c == '\'':
				inSingle = true
			case isSpace(c):
				break scan
			default:
				word = append(word, c)
			}
		}
		if inDouble || inSingle {
			return nil, fmt.Errorf("unbalanced quotes in %q", line)
		}
		words = append(words, string(word))
	}
}

// unescape decodes the escape sequence at the start of s and reports how many bytes it used
func unescape(s string) (int, byte, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("dangling escape")
	}
	switch s[1] {
	case 'n':
		return 2, '\n', nil
	case 'r':
		return 2, '\r', nil
	case 't':
		return 2, '\t', nil
	case 'x':
		if len(s) < 4 {
			return 0, 0, fmt.Errorf("short \\x escape")
		}
		b, err := strconv.ParseUint(s[2:4], 16, 8)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid \\x escape %q", s[:4])
		}
		return 4, byte(b), nil
	default:
		return 2, s[1], nil
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
