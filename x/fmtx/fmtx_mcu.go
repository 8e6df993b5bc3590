//go:build rp2040 || rp2350

package fmtx

import (
	"io"
	"unicode/utf8"

	"aquamon-go/x/conv"
)

// DefaultOutput is used by Print/Printf on MCU builds.
// The platform bootstrap points it at the console UART.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a...)
	return string(b.buf)
}

func Printf(format string, a ...any) (int, error) {
	return Fprintf(DefaultOutput, format, a...)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var b builder
	b.format(format, a...)
	return w.Write(b.buf)
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

func Sprint(a ...any) string {
	var b builder
	b.list(a)
	return string(b.buf)
}

func Fprint(w io.Writer, a ...any) (int, error) {
	var b builder
	b.list(a)
	return w.Write(b.buf)
}

func Print(a ...any) (int, error) { return Fprint(DefaultOutput, a...) }

// Console subset: %s %d %x %X %v %t %% with width and '-' for %s and %d.
// Floats print as <float>; format them before they get here.

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

type builder struct {
	buf []byte
	num [20]byte
}

func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) list(a []any) {
	for i, v := range a {
		if i > 0 {
			b.buf = append(b.buf, ' ')
		}
		b.str(b.text(v))
	}
}

// text renders v the way %v would for the types the firmware logs.
func (b *builder) text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case error:
		return x.Error()
	case interface{ String() string }:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float32, float64:
		return "<float>"
	}
	if n, ok := toI64(v); ok {
		return string(conv.Itoa(b.num[:], n))
	}
	if u, ok := toU64(v); ok {
		return string(conv.Utoa(b.num[:], u))
	}
	return "<?>"
}

func (b *builder) hex(v any, upper bool) string {
	u, ok := toU64(v)
	if !ok {
		n, _ := toI64(v)
		u = uint64(n)
	}
	i := len(b.num)
	for {
		i--
		d := byte(u & 0xF)
		switch {
		case d < 10:
			b.num[i] = '0' + d
		case upper:
			b.num[i] = 'A' + d - 10
		default:
			b.num[i] = 'a' + d - 10
		}
		u >>= 4
		if u == 0 {
			break
		}
	}
	return string(b.num[i:])
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); {
		if format[i] != '%' {
			b.buf = append(b.buf, format[i])
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			b.buf = append(b.buf, '%')
			i += 2
			continue
		}
		i++
		left := false
		if i < len(format) && format[i] == '-' {
			left = true
			i++
		}
		width := 0
		for i < len(format) && '0' <= format[i] && format[i] <= '9' {
			width = width*10 + int(format[i]-'0')
			i++
		}
		if i >= len(format) || ai >= len(args) {
			return
		}
		verb := format[i]
		arg := args[ai]
		ai++
		i++

		var s string
		switch verb {
		case 's', 'v', 'd':
			s = b.text(arg)
		case 'x', 'X':
			s = b.hex(arg, verb == 'X')
		case 't':
			s = b.text(arg == true)
		default:
			b.buf = append(b.buf, '%', verb)
			continue
		}
		pad := width - utf8.RuneCountInString(s)
		if !left {
			b.spaces(pad)
		}
		b.str(s)
		if left {
			b.spaces(pad)
		}
	}
}

func (b *builder) spaces(n int) {
	for ; n > 0; n-- {
		b.buf = append(b.buf, ' ')
	}
}

func toI64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func toU64(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint:
		return uint64(t), true
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	case uintptr:
		return uint64(t), true
	}
	return 0, false
}
