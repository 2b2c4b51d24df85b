// Package wording holds Russian text helpers used when filling legal documents:
// cardinal numbers in words, ruble amounts in words, genitive-case inflection
// and "Surname I.O." abbreviation.
package wording

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	onesMasculine = [10]string{"", "один", "два", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	onesFeminine  = [10]string{"", "одна", "две", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	teens         = [10]string{"десять", "одиннадцать", "двенадцать", "тринадцать", "четырнадцать", "пятнадцать", "шестнадцать", "семнадцать", "восемнадцать", "девятнадцать"}
	tens          = [10]string{"", "", "двадцать", "тридцать", "сорок", "пятьдесят", "шестьдесят", "семьдесят", "восемьдесят", "девяносто"}
	hundreds      = [10]string{"", "сто", "двести", "триста", "четыреста", "пятьсот", "шестьсот", "семьсот", "восемьсот", "девятьсот"}
)

// magnitude is a power-of-thousand noun with its three plural forms.
type magnitude struct {
	value    int64
	feminine bool
	forms    [3]string
}

var magnitudes = []magnitude{
	{value: 1_000_000_000, forms: [3]string{"миллиард", "миллиарда", "миллиардов"}},
	{value: 1_000_000, forms: [3]string{"миллион", "миллиона", "миллионов"}},
	{value: 1_000, feminine: true, forms: [3]string{"тысяча", "тысячи", "тысяч"}},
}

// Plural picks the form agreeing with n: one (1, 21, ...), few (2-4, 22-24, ...)
// or many (0, 5-20, 25-30, ...). 11-14 always take the many form.
func Plural(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastTwo := n % 100
	if lastTwo >= 11 && lastTwo <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}

// triplet spells 1..999. Zero yields an empty slice.
func triplet(n int64, feminine bool) []string {
	var words []string
	if h := n / 100; h > 0 {
		words = append(words, hundreds[h])
	}
	n %= 100
	switch {
	case n >= 20:
		words = append(words, tens[n/10])
		n %= 10
	case n >= 10:
		return append(words, teens[n-10])
	}
	if n > 0 {
		if feminine {
			words = append(words, onesFeminine[n])
		} else {
			words = append(words, onesMasculine[n])
		}
	}
	return words
}

// NumberToWords spells a non-negative integer as a Russian masculine cardinal.
// Negative input is spelled with a leading "минус".
func NumberToWords(n int64) string {
	return numberToWords(n, false)
}

func numberToWords(n int64, feminine bool) string {
	if n == 0 {
		return "ноль"
	}
	var words []string
	if n < 0 {
		words = append(words, "минус")
		n = -n
	}
	for _, m := range magnitudes {
		if n < m.value {
			continue
		}
		group := n / m.value
		n %= m.value
		// Groups above the largest magnitude are spelled recursively.
		if group >= 1000 {
			words = append(words, numberToWords(group, m.feminine))
		} else {
			words = append(words, triplet(group, m.feminine)...)
		}
		words = append(words, Plural(group, m.forms[0], m.forms[1], m.forms[2]))
	}
	words = append(words, triplet(n, feminine)...)
	return strings.Join(words, " ")
}

// CurrencyInWords spells the ruble part of amount and appends the kopecks as
// digits, e.g. "сто рублей (50 копеек)". The amount is rounded to kopecks.
func CurrencyInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rubles := amount.IntPart()
	kopecks := amount.Sub(decimal.NewFromInt(rubles)).Shift(2).IntPart()

	return fmt.Sprintf("%s %s (%d %s)",
		NumberToWords(rubles),
		Plural(rubles, "рубль", "рубля", "рублей"),
		kopecks,
		Plural(kopecks, "копейка", "копейки", "копеек"),
	)
}
