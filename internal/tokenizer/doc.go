// Package tokenizer maps text to the token ids an Embedding layer was
// trained on.
//
// A model description may carry its vocabulary as an ordered token list;
// a token's position is its id. Vocabulary encodes text by greedy longest
// match against that list, which covers both character-level and
// word-piece vocabularies.
//
// Example usage:
//
//	vocab, err := tokenizer.NewVocabulary(desc.Vocabulary)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, _ := vocab.Encode("hello")
//	text, _ := vocab.Decode(ids)
package tokenizer
