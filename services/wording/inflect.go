package wording

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Genitive inflection is a suffix heuristic, not a morphological analyzer.
// Words are rewritten independently; anything unmatched passes through.

// genitiveExceptions are whole phrases returned unchanged (case-insensitive).
var genitiveExceptions = map[string]struct{}{
	"ОГРНИП": {},
	"ИП":     {},
}

// genitiveEndings is checked in order; the first matching ending wins.
var genitiveEndings = []struct {
	suffix      string
	replacement string
}{
	{"ый", "ого"},
	{"ой", "ого"},
	{"ий", "ия"},
	{"ая", "ой"},
	{"яя", "ей"},
}

var (
	numericWord    = regexp.MustCompile(`^[\d.,;:!?]+$`)
	hushingBeforeA = "гкхжчшщГКХЖЧШЩ"
	consonants     = "бвгджзклмнпрстфхцчшщБВГДЖЗКЛМНПРСТФХЦЧШЩ"
)

// InflectGenitive approximates the genitive case of a phrase word by word.
//
// Covered endings, in priority order:
//
//	digits/punctuation only  unchanged
//	-ый, -ой                 -ого
//	-ий                      -ия
//	-ая                      -ой
//	-яя                      -ей
//	-о                       unchanged
//	-а after г,к,х,ж,ч,ш,щ   -и
//	-а otherwise             -ы
//	-я                       -и
//	-ь                       -я
//	consonant                +а
//	anything else            unchanged
func InflectGenitive(phrase string) string {
	if phrase == "" {
		return ""
	}
	if _, ok := genitiveExceptions[strings.ToUpper(strings.TrimSpace(phrase))]; ok {
		return phrase
	}
	words := strings.Split(phrase, " ")
	for i, w := range words {
		words[i] = inflectWord(w)
	}
	return strings.Join(words, " ")
}

func inflectWord(word string) string {
	if word == "" || numericWord.MatchString(word) {
		return word
	}
	for _, e := range genitiveEndings {
		if strings.HasSuffix(word, e.suffix) {
			return strings.TrimSuffix(word, e.suffix) + e.replacement
		}
	}

	last, size := utf8.DecodeLastRuneInString(word)
	stem := word[:len(word)-size]
	switch {
	case last == 'о':
		return word
	case last == 'а':
		prev, _ := utf8.DecodeLastRuneInString(stem)
		if strings.ContainsRune(hushingBeforeA, prev) {
			return stem + "и"
		}
		return stem + "ы"
	case last == 'я':
		return stem + "и"
	case last == 'ь':
		return stem + "я"
	case strings.ContainsRune(consonants, last):
		return word + "а"
	}
	return word
}

// AbbreviateFullName turns "Иванов Петр Сергеевич" into "Иванов П.С.".
// The first token is kept verbatim; blank input yields "".
func AbbreviateFullName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	var initials strings.Builder
	for _, p := range parts[1:] {
		r, _ := utf8.DecodeRuneInString(p)
		initials.WriteRune(r)
		initials.WriteByte('.')
	}
	if initials.Len() == 0 {
		return parts[0]
	}
	return parts[0] + " " + initials.String()
}
