package lexicon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Emotion indexes the fixed emotion catalog. The declaration order is
// significant: it breaks ties wherever a dominant emotion is chosen.
type Emotion int

const (
	Joy Emotion = iota
	Sadness
	Fear
	Anger
	Surprise
	Disgust
	Trust
	Anticipation

	NumEmotions = 8
)

// Neutral is reported in place of an emotion name when every score is zero.
const Neutral = "neutral"

var emotionNames = [NumEmotions]string{
	"joy", "sadness", "fear", "anger",
	"surprise", "disgust", "trust", "anticipation",
}

func (e Emotion) String() string {
	if e < 0 || int(e) >= NumEmotions {
		return fmt.Sprintf("Emotion(%d)", int(e))
	}
	return emotionNames[e]
}

// Emotions returns every category in declaration order.
func Emotions() []Emotion {
	out := make([]Emotion, NumEmotions)
	for i := range out {
		out[i] = Emotion(i)
	}
	return out
}

// ParseEmotion maps a category name back to its Emotion.
func ParseEmotion(name string) (Emotion, bool) {
	for i, n := range emotionNames {
		if n == name {
			return Emotion(i), true
		}
	}
	return 0, false
}

// EmotionVector holds one independent score per category. Scores are not
// required to sum to 1.
type EmotionVector [NumEmotions]float64

// Get returns the score for e.
func (v EmotionVector) Get(e Emotion) float64 {
	return v[e]
}

// Sum adds every category score.
func (v EmotionVector) Sum() float64 {
	var total float64
	for _, s := range v {
		total += s
	}
	return total
}

// Add returns the element-wise sum of v and o.
func (v EmotionVector) Add(o EmotionVector) EmotionVector {
	var out EmotionVector
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

// Dominant returns the highest scoring category. Ties go to the category
// declared first. ok is false when every score is zero.
func (v EmotionVector) Dominant() (Emotion, bool) {
	best := Joy
	for i := 1; i < NumEmotions; i++ {
		if v[i] > v[best] {
			best = Emotion(i)
		}
	}
	return best, v[best] > 0
}

// DominantName is Dominant rendered for reports, falling back to Neutral.
func (v EmotionVector) DominantName() string {
	e, ok := v.Dominant()
	if !ok {
		return Neutral
	}
	return e.String()
}

// Normalized scales the vector so it sums to 1. A zero vector stays zero.
func (v EmotionVector) Normalized() EmotionVector {
	total := v.Sum()
	if total == 0 {
		return EmotionVector{}
	}
	var out EmotionVector
	for i, s := range v {
		out[i] = s / total
	}
	return out
}

// Map returns the scores keyed by category name.
func (v EmotionVector) Map() map[string]float64 {
	out := make(map[string]float64, NumEmotions)
	for i, s := range v {
		out[emotionNames[i]] = s
	}
	return out
}

// EmotionVectorFromMap rebuilds a vector from category names. Unknown keys
// are an error so that a misspelled category never disappears silently.
func EmotionVectorFromMap(m map[string]float64) (EmotionVector, error) {
	var v EmotionVector
	for name, score := range m {
		e, ok := ParseEmotion(name)
		if !ok {
			return EmotionVector{}, fmt.Errorf("unknown emotion %q", name)
		}
		v[e] = score
	}
	return v, nil
}

// MarshalJSON writes an object whose keys follow catalog order.
func (v EmotionVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(emotionNames[i]))
		buf.WriteByte(':')
		buf.Write(strconv.AppendFloat(nil, s, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *EmotionVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := EmotionVectorFromMap(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
