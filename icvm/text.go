package icvm

import (
	"errors"
	"strconv"
	"strings"

	"go.brendoncarroll.net/exp/slices2"
)

var errEmptyProgram = errors.New("empty program")

// Parse parses comma separated decimal integers.
// Whitespace around the text and around each token is ignored.
func Parse(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMalformedProgram{Err: errEmptyProgram}
	}
	return ParseList(text)
}

// ParseList is like Parse, but the empty string is an empty list.
func ParseList(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	toks := strings.Split(text, ",")
	ret := make([]int64, len(toks))
	for i, tok := range toks {
		tok = strings.TrimSpace(tok)
		x, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) {
				err = numErr.Err
			}
			return nil, ErrMalformedProgram{Index: i, Token: tok, Err: err}
		}
		ret[i] = x
	}
	return ret, nil
}

// Format is the inverse of Parse.
func Format(prog []int64) string {
	return strings.Join(slices2.Map(prog, func(x int64) string {
		return strconv.FormatInt(x, 10)
	}), ",")
}
