package money

import "strings"

var lessThanTwenty = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = [...]string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// scales from largest to smallest. A comma follows the scale name whenever
// more words come after it.
var scales = []struct {
	value uint64
	name  string
}{
	{1_000_000_000_000_000_000, "quintillion"},
	{1_000_000_000_000_000, "quadrillion"},
	{1_000_000_000_000, "trillion"},
	{1_000_000_000, "billion"},
	{1_000_000, "million"},
	{1_000, "thousand"},
}

// Words spells n as English cardinal words in lower case:
//   Words(21)   -> "twenty-one"
//   Words(250)  -> "two hundred fifty"
//   Words(1234) -> "one thousand, two hundred thirty-four"
//   Words(-7)   -> "minus seven"
func Words(n int64) string {
	if n == 0 {
		return lessThanTwenty[0]
	}
	var words []string
	u := uint64(n)
	if n < 0 {
		words = append(words, "minus")
		u = uint64(-(n + 1)) + 1
	}
	words = appendWords(words, u)
	return strings.TrimSuffix(strings.Join(words, " "), ",")
}

func appendWords(words []string, n uint64) []string {
	for n > 0 {
		switch {
		case n < 20:
			return append(words, lessThanTwenty[n])
		case n < 100:
			w := tens[n/10]
			if r := n % 10; r != 0 {
				w += "-" + lessThanTwenty[r]
			}
			return append(words, w)
		case n < 1000:
			words = appendWords(words, n/100)
			words = append(words, "hundred")
			n %= 100
		default:
			for _, s := range scales {
				if n >= s.value {
					words = appendWords(words, n/s.value)
					words = append(words, s.name+",")
					n %= s.value
					break
				}
			}
		}
	}
	return words
}
