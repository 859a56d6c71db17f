package lexicon

import "sync"

// Version identifies the keyword tables below. Bump it whenever a list
// changes so stored analyses can be told apart.
const Version = "2025.2"

var emotionKeywords = [NumEmotions][]string{
	Joy: {
		"happy", "joyful", "excited", "delighted", "cheerful", "wonderful",
		"amazing", "love", "loved", "beautiful", "peaceful", "content",
		"laughing", "glad", "bliss", "blissful",
	},
	Sadness: {
		"sad", "unhappy", "depressed", "lonely", "crying", "cried", "tears",
		"grief", "loss", "heartbroken", "miserable", "gloomy", "sorrow", "sorrowful",
	},
	Fear: {
		"afraid", "scared", "scary", "terrified", "terrifying", "anxious", "worried", "panic", "panicked", "panicking",
		"nightmare", "horror", "frightened", "frightening", "threatened", "danger", "dangerous",
	},
	Anger: {
		"angry", "mad", "furious", "rage", "frustrated", "irritated",
		"annoyed", "hostile", "aggressive", "violent", "yelling",
	},
	Surprise: {
		"surprised", "shocked", "amazed", "astonished", "stunned",
		"unexpected", "sudden", "suddenly", "startled",
	},
	Disgust: {
		"disgusted", "disgusting", "revolted", "repulsed", "nasty", "gross",
		"horrible", "awful", "unpleasant", "rotten",
	},
	Trust: {
		"trust", "safe", "secure", "comfortable", "protected",
		"confident", "reliable", "reassured",
	},
	Anticipation: {
		"waiting", "expecting", "anticipating", "looking forward",
		"preparing", "ready", "hopeful", "eager",
	},
}

type themeSource struct {
	name     string
	keywords []string
}

var themeKeywords = []themeSource{
	{"flying", []string{"flying", "fly", "flew", "floating", "soaring", "air"}},
	{"falling", []string{"falling", "fell", "dropping", "plunging"}},
	{"chase", []string{"chased", "chasing", "running from", "pursued", "escape", "escaped", "escaping"}},
	{"water", []string{"water", "ocean", "sea", "river", "swimming", "drowning", "lake", "waves"}},
	{"death", []string{"death", "dying", "dead", "funeral", "died"}},
	{"school", []string{"school", "class", "classroom", "teacher", "exam", "exams", "test"}},
	{"work", []string{"work", "office", "boss", "job", "meeting", "coworker", "coworkers"}},
	{"family", []string{"family", "mother", "father", "mom", "dad", "parent", "parents", "sibling", "siblings", "brother", "sister"}},
	{"romance", []string{"love", "kiss", "kissed", "kissing", "romantic", "date", "partner", "wedding"}},
	{"animals", []string{"dog", "dogs", "cat", "cats", "animal", "animals", "bird", "birds", "snake", "snakes", "horse", "horses"}},
	{"travel", []string{"travel", "traveled", "traveling", "travelling", "journey", "trip", "destination", "airport", "train"}},
	{"home", []string{"home", "house", "room", "apartment", "bedroom"}},
}

type cueSource struct {
	keyword string
	weight  float64
}

var stressCues = []cueSource{
	{"chased", 1.0},
	{"pursued", 1.0},
	{"late", 0.5},
	{"exam", 1.0},
	{"exams", 1.0},
	{"test", 0.5},
	{"unprepared", 1.0},
	{"falling", 0.75},
	{"drowning", 1.0},
	{"trapped", 1.0},
	{"stuck", 0.5},
	{"lost", 0.5},
	{"naked", 0.75},
	{"teeth", 1.0},
	{"paralyzed", 1.0},
	{"unable to move", 1.0},
	{"screaming", 0.75},
	{"deadline", 0.75},
	{"deadlines", 0.75},
}

// Theme is a named set of keywords whose presence marks an entry.
type Theme struct {
	Name     string
	Keywords []Keyword
}

// Catalog is the read-only keyword data behind the emotion, theme and stress
// scorers. Build it once with Default and share the pointer.
type Catalog struct {
	version  string
	emotions [NumEmotions][]Keyword
	themes   []Theme
	themeIdx map[string]int
	stress   []Keyword
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the process-wide catalog, building it on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = build()
	})
	return defaultCatalog
}

func build() *Catalog {
	c := &Catalog{
		version:  Version,
		themeIdx: make(map[string]int, len(themeKeywords)),
	}
	for e, words := range emotionKeywords {
		for _, w := range words {
			c.emotions[e] = append(c.emotions[e], parseKeyword(w, 1))
		}
	}
	for i, src := range themeKeywords {
		theme := Theme{Name: src.name}
		for _, w := range src.keywords {
			theme.Keywords = append(theme.Keywords, parseKeyword(w, 1))
		}
		c.themes = append(c.themes, theme)
		c.themeIdx[src.name] = i
	}
	for _, cue := range stressCues {
		c.stress = append(c.stress, parseKeyword(cue.keyword, cue.weight))
	}
	return c
}

func (c *Catalog) Version() string {
	return c.version
}

// EmotionMatches counts keyword occurrences for one category.
func (c *Catalog) EmotionMatches(e Emotion, tokens []string) int {
	return countAll(c.emotions[e], tokens)
}

// ThemeNames lists every theme in declaration order.
func (c *Catalog) ThemeNames() []string {
	names := make([]string, len(c.themes))
	for i, t := range c.themes {
		names[i] = t.Name
	}
	return names
}

// ThemeOrder returns the declaration index of a theme, or len(themes) for
// names the catalog does not know so they sort last.
func (c *Catalog) ThemeOrder(name string) int {
	if i, ok := c.themeIdx[name]; ok {
		return i
	}
	return len(c.themes)
}

// MatchThemes returns the themes present in tokens, in declaration order.
func (c *Catalog) MatchThemes(tokens []string) []string {
	found := make([]string, 0, 4)
	for _, t := range c.themes {
		if anyMatch(t.Keywords, tokens) {
			found = append(found, t.Name)
		}
	}
	return found
}

// StressWeight sums the weights of every stress cue occurrence.
func (c *Catalog) StressWeight(tokens []string) float64 {
	var total float64
	for _, k := range c.stress {
		if n := k.Count(tokens); n > 0 {
			total += float64(n) * k.Weight
		}
	}
	return total
}
