package containers

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/trumank/meatloaf/internal/remote"
)

// ReadFString decodes an FString at addr: a TArray<uint16> whose payload is
// UTF-16LE with a single terminating zero code unit. The decoded string is
// the prefix up to the first zero, or the full length if there is none.
func ReadFString(ctx *remote.Context, addr remote.Addr) (string, error) {
	h, err := ReadHeapArrayHeader(ctx, addr)
	if err != nil {
		return "", err
	}
	if h.Num == 0 {
		return "", nil
	}
	units, err := ReadLocalElements(ctx, h, 2, func(w []byte) (uint16, error) {
		return uint16(w[0]) | uint16(w[1])<<8, nil
	})
	if err != nil {
		return "", err
	}

	n := len(units)
	for i, u := range units {
		if u == 0 {
			n = i
			break
		}
	}
	units = units[:n]

	runes := utf16.Decode(units)
	for _, r := range runes {
		if r == utf8.RuneError {
			return "", fmt.Errorf("containers: invalid UTF-16 in string at %s: %w", addr, remote.ErrDecode)
		}
	}
	return string(runes), nil
}
