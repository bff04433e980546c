package cipher

import (
	"strings"

	"golang.org/x/text/language"
)

// Profile bundles the reference statistics of a natural language. Profiles
// are shared read-only by every analyser.
type Profile struct {
	Name string
	Tag  language.Tag
	// Frequencies holds the relative frequency of A..Z.
	Frequencies [alphabetSize]float64
	// Words are frequent short words counted as substrings when scoring
	// candidate plaintexts.
	Words []string
}

var English = &Profile{
	Name: "english",
	Tag:  language.English,
	Frequencies: [alphabetSize]float64{
		0.082, 0.015, 0.027, 0.047, 0.13, 0.022, 0.02, // A-G
		0.062, 0.069, 0.0016, 0.0081, 0.04, 0.027, 0.067, // H-N
		0.078, 0.019, 0.0011, 0.059, 0.062, 0.096, 0.027, // O-U
		0.0097, 0.024, 0.0015, 0.02, 0.00078, // V-Z
	},
	Words: []string{
		"the", "of", "and", "to", "in", "is", "you", "that", "it", "he",
		"was", "for", "on", "are", "as", "with", "his", "they", "at", "be",
		"this", "have", "from", "or", "one", "had", "by", "word", "but", "not",
		"what", "all", "were", "we", "when", "your", "can", "said", "there", "use",
		"an", "each", "which", "she", "do", "how", "their", "if", "will", "up",
		"other", "about", "out", "many", "then", "them", "these", "so", "some", "her",
		"would", "make", "like", "him", "into", "time", "has", "look", "two", "more",
		"write", "go", "see", "number", "no", "way", "could", "people", "my", "than",
		"first", "water", "been", "call", "who", "its", "now", "find", "long", "down",
		"day", "did", "get", "come", "made", "may", "part", "over", "new", "after",
	},
}

var German = &Profile{
	Name: "german",
	Tag:  language.German,
	Frequencies: [alphabetSize]float64{
		0.0651, 0.0189, 0.0306, 0.0508, 0.174, 0.0166, 0.0301, // A-G
		0.0476, 0.0755, 0.0027, 0.0121, 0.0344, 0.0253, 0.0978, // H-N
		0.0251, 0.0079, 0.0002, 0.07, 0.0727, 0.0615, 0.0435, // O-U
		0.0067, 0.0189, 0.0003, 0.0004, 0.0113, // V-Z
	},
	Words: []string{
		"der", "die", "und", "in", "zu", "den", "das", "nicht", "von", "sie", "ist", "des", "sich", "mit",
		"dem", "dass", "er", "es", "ein", "ich", "auf", "so", "eine", "auch", "als", "an", "nach", "wie",
		"im", "für", "man", "aber", "aus", "durch", "wenn", "nur", "war", "noch", "werden", "bei", "hat",
		"wir", "was", "wird", "sein", "einen", "welche", "sind", "oder", "zur", "um", "haben", "einer",
		"mir", "über", "ihm", "diese", "einem", "ihr", "uns", "da", "zum", "kann", "doch", "vor", "dieser",
		"mich", "ihn", "du", "hatte", "seine", "mehr", "am", "denn", "nun", "unter", "sehr", "selbst", "schon",
		"hier", "bis", "habe", "ihre", "dann", "ihnen", "seiner", "alle", "wieder", "meine", "Zeit", "gegen",
		"vom", "ganz", "einzelnen", "wo", "muss", "ohne", "eines", "können", "sei",
	},
}

var (
	profiles       = []*Profile{English, German}
	profileMatcher = language.NewMatcher([]language.Tag{English.Tag, German.Tag})
)

// Profiles returns the bundled language profiles.
func Profiles() []*Profile {
	out := make([]*Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ProfileFor picks the bundled profile that best matches a BCP 47 tag or a
// profile name. Unknown languages fall back to English.
func ProfileFor(tag string) *Profile {
	tag = strings.TrimSpace(tag)
	for _, p := range profiles {
		if strings.EqualFold(tag, p.Name) {
			return p
		}
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return English
	}
	_, idx, conf := profileMatcher.Match(parsed)
	if conf == language.No {
		return English
	}
	return profiles[idx]
}

// ExpectedIC returns the index of coincidence of letters drawn from the profile.
func (p *Profile) ExpectedIC() float64 {
	var sum float64
	for _, f := range p.Frequencies {
		sum += f * f
	}
	return sum
}

// distance is the sum of squared differences between the reference
// frequencies and the observed ones, assuming the observed text was shifted
// forward by shift.
func (p *Profile) distance(observed [alphabetSize]float64, shift int) float64 {
	var sum float64
	for i, ref := range p.Frequencies {
		d := ref - observed[(i+shift)%alphabetSize]
		sum += d * d
	}
	return sum
}

// wordHits counts every occurrence of every profile word in text.
func (p *Profile) wordHits(text string) int {
	hits := 0
	for _, w := range p.Words {
		hits += strings.Count(text, w)
	}
	return hits
}
