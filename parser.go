package CouloyLite

import (
	"math"
	"strconv"
	"strings"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// parseCommand resolves the verb and checks the argument count
func parseCommand(args [][]byte) (*Command, reply.ErrorReply) {
	if len(args) == 0 {
		return nil, reply.MakeErrReply(public.MsgEmptyCommand)
	}
	name := strings.ToLower(string(args[0]))
	cmd, ok := cmdTable[name]
	if !ok {
		return nil, reply.MakeUnknownCommandErrReply(string(args[0]))
	}
	if !validateArity(cmd, len(args)) {
		return nil, reply.MakeArgNumErrReply(name)
	}
	return &Command{name: name, args: args[1:], spec: cmd}, nil
}

func validateArity(cmd *command, argNum int) bool {
	if cmd.maxArgs > 0 && argNum > cmd.maxArgs {
		return false
	}
	if cmd.arity >= 0 {
		return argNum == cmd.arity
	}
	return argNum >= -cmd.arity
}

func parseInt(arg []byte) (int64, reply.ErrorReply) {
	v, ok := parseInt64(arg)
	if !ok {
		return 0, reply.MakeErrReply(public.MsgNotInteger)
	}
	return v, nil
}

// parseInt64 accepts an optional '-' followed by base 10 digits, nothing else
func parseInt64(b []byte) (int64, bool) {
	if len(b) == 0 || b[0] == '+' {
		return 0, false
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	return v, err == nil
}

func parseFloat(arg []byte) (float64, reply.ErrorReply) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(arg)), 64)
	if err != nil || math.IsNaN(v) || len(arg) == 0 {
		return 0, reply.MakeErrReply(public.MsgNotFloat)
	}
	return v, nil
}

// formatFloat renders a score or float value the way replies carry it
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if f == math.Trunc(f) && abs < 1e17 {
		return strconv.FormatInt(int64(f), 10)
	}
	if abs >= 1e-4 && abs < 1e17 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// normalizeRange clamps redis style start/stop indexes (negative from the
// end) into [0, size), ok is false when the range is empty
func normalizeRange(start, stop int64, size int) (int, int, bool) {
	n := int64(size)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return int(start), int(stop), true
}

func isOption(arg []byte, option string) bool {
	return strings.EqualFold(string(arg), option)
}
