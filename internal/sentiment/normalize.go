package sentiment

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'", "‛", "'",
		"“", `"`, "”", `"`, "‟", `"`,
	)
)

// Text is a normalized dream entry ready for scoring.
type Text struct {
	Plain        string
	Tokens       []string
	Sentences    int
	Exclamations int
	Questions    int
}

// WordCount is the number of word tokens.
func (t Text) WordCount() int {
	return len(t.Tokens)
}

func (t Text) Empty() bool {
	return len(t.Tokens) == 0
}

// RemoveLinks keeps markdown link text and drops bare URLs.
func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting HTML so only
// the readable text is left.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return html.UnescapeString(plain)
}

// Normalize turns raw journal text into plain text, lowercase word tokens and
// punctuation counts. It never fails; empty input yields an empty Text.
func Normalize(raw string) Text {
	plain := RemoveLinks(raw)
	plain = ConvertMarkdownToText(plain)
	plain = norm.NFKC.String(plain)
	plain = quoteReplacer.Replace(plain)
	plain = strings.Join(strings.Fields(plain), " ")

	// cases.Caser keeps state and is not safe to share between goroutines.
	lower := cases.Lower(language.English).String(plain)

	t := Text{
		Plain:        plain,
		Tokens:       Tokenize(lower),
		Exclamations: strings.Count(plain, "!"),
		Questions:    strings.Count(plain, "?"),
	}
	t.Sentences = countSentences(plain, len(t.Tokens) > 0)
	return t
}

// Tokenize splits already-lowercased text into words made of letters and
// digits. An apostrophe between two letters stays inside the word.
func Tokenize(s string) []string {
	runes := []rune(s)
	tokens := make([]string, 0, len(runes)/5+1)
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' && b.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func countSentences(plain string, hasWords bool) int {
	count := 0
	pending := false
	for _, r := range plain {
		switch {
		case r == '.' || r == '!' || r == '?':
			if pending {
				count++
				pending = false
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			pending = true
		}
	}
	if pending {
		count++
	}
	if count == 0 && hasWords {
		count = 1
	}
	return count
}
