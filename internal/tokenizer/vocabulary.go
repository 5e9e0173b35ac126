package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UnknownToken is the Keras TextVectorization out-of-vocabulary token.
const UnknownToken = "[UNK]"

// Vocabulary errors.
var (
	ErrDuplicateToken = errors.New("duplicate token in vocabulary")
	ErrUnknownID      = errors.New("token id is not in the vocabulary")
)

// Vocabulary is an ordered token list. Insertion order is id order.
type Vocabulary struct {
	ids      *orderedmap.OrderedMap[string, int32]
	tokens   []string
	maxBytes int
	unk      int32
}

// NewVocabulary builds a vocabulary from tokens in id order. The empty
// string may appear (Keras reserves it for padding) but is never matched.
func NewVocabulary(tokens []string) (*Vocabulary, error) {
	v := &Vocabulary{
		ids:    orderedmap.New[string, int32](),
		tokens: make([]string, len(tokens)),
		unk:    -1,
	}
	copy(v.tokens, tokens)

	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, present := v.ids.Set(tok, int32(i)); present {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateToken, tok)
		}
		v.maxBytes = max(v.maxBytes, len(tok))
		if tok == UnknownToken {
			v.unk = int32(i)
		}
	}
	return v, nil
}

// Encode splits text by greedy longest match. Runes no token covers
// encode as the unknown token, or are dropped when the vocabulary has
// none.
func (v *Vocabulary) Encode(text string) ([]int32, error) {
	var out []int32
	for pos := 0; pos < len(text); {
		id, n := v.longest(text[pos:])
		if n == 0 {
			_, n = utf8.DecodeRuneInString(text[pos:])
			if v.unk >= 0 {
				out = append(out, v.unk)
			}
		} else {
			out = append(out, id)
		}
		pos += n
	}
	return out, nil
}

func (v *Vocabulary) longest(s string) (int32, int) {
	for n := min(v.maxBytes, len(s)); n > 0; n-- {
		if !utf8.ValidString(s[:n]) {
			continue
		}
		if id, ok := v.ids.Get(s[:n]); ok {
			return id, n
		}
	}
	return 0, 0
}

// Decode concatenates the tokens for ids.
func (v *Vocabulary) Decode(ids []int32) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		tok, ok := v.Token(id)
		if !ok {
			return "", fmt.Errorf("%w: %d", ErrUnknownID, id)
		}
		sb.WriteString(tok)
	}
	return sb.String(), nil
}

// Token returns the token with the given id.
func (v *Vocabulary) Token(id int32) (string, bool) {
	if id < 0 || int(id) >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// ID returns the id of tok.
func (v *Vocabulary) ID(tok string) (int32, bool) {
	return v.ids.Get(tok)
}

// Tokens returns the matchable tokens in id order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, 0, v.ids.Len())
	for pair := v.ids.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// VocabSize returns the number of ids, including the empty token.
func (v *Vocabulary) VocabSize() int {
	return len(v.tokens)
}

// UnkToken returns the id of UnknownToken, or -1.
func (v *Vocabulary) UnkToken() int32 {
	return v.unk
}

var _ Tokenizer = (*Vocabulary)(nil)
