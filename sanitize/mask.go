package sanitize

import (
	"net/netip"
	"strconv"
	"strings"
	"unicode"
)

// Masker applies content-aware masking.
type Masker interface {
	Mask(value string) string
}

// MaskerFunc adapts a function to the Masker interface.
type MaskerFunc func(string) string

// Mask calls f(value).
func (f MaskerFunc) Mask(value string) string {
	return f(value)
}

var builtinMasks = map[MaskType]MaskerFunc{
	MaskSSN:   maskSSN,
	MaskEmail: maskEmail,
	MaskPhone: maskPhone,
	MaskCard:  maskCard,
	MaskIP:    maskIP,
	MaskUUID:  maskUUID,
	MaskIBAN:  maskIBAN,
	MaskName:  maskName,
}

// Maskers returns a fresh map of the built-in maskers.
func Maskers() map[MaskType]Masker {
	out := make(map[MaskType]Masker, len(builtinMasks))
	for mt, f := range builtinMasks {
		out[mt] = f
	}
	return out
}

// stars hides a value entirely.
func stars(value string) string {
	return strings.Repeat("*", len(value))
}

// lastDigits returns the final n digits of value, or false when it has fewer.
func lastDigits(value string, n int) (string, int, bool) {
	digits := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < n {
		return "", len(digits), false
	}
	return string(digits[len(digits)-n:]), len(digits), true
}

func maskSSN(value string) string {
	tail, _, ok := lastDigits(value, 4)
	if !ok {
		return stars(value)
	}
	return "***-**-" + tail
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return stars(value)
	}
	return value[:1] + "***" + value[at:]
}

func maskPhone(value string) string {
	tail, n, ok := lastDigits(value, 4)
	switch {
	case !ok:
		return stars(value)
	case n >= 10 && strings.HasPrefix(value, "("):
		return "(***) ***-" + tail
	case n >= 10:
		return "***-***-" + tail
	default:
		return "***-" + tail
	}
}

func maskCard(value string) string {
	tail, n, ok := lastDigits(value, 4)
	if !ok {
		return stars(value)
	}
	sep := ""
	switch {
	case strings.Contains(value, " "):
		sep = " "
	case strings.Contains(value, "-"):
		sep = "-"
	default:
		return strings.Repeat("*", n-4) + tail
	}
	groups := make([]string, 0, (n-4+3)/4+1)
	for i := 0; i < (n-4+3)/4; i++ {
		groups = append(groups, "****")
	}
	return strings.Join(append(groups, tail), sep)
}

func maskIP(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return stars(value)
	}
	if addr.Is4() {
		b := addr.As4()
		return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + ".xxx.xxx"
	}
	groups := strings.Split(addr.StringExpanded(), ":")
	return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
}

func maskUUID(value string) string {
	first, _, ok := strings.Cut(value, "-")
	if !ok || strings.Count(value, "-") != 4 {
		return stars(value)
	}
	return first + "-****-****-****-************"
}

func maskIBAN(value string) string {
	if len(value) <= 8 {
		return stars(value)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}
