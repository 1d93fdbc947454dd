package chat

import (
	"strings"

	"github.com/medmole/medmole/internal/model"
)

// MinSymptomsForPrediction is the minimum number of distinct symptoms that
// must appear in the user's recent history before the external classifier
// is consulted. Below this the prediction is noise.
const MinSymptomsForPrediction = 3

// ExtractSymptoms scans recent pain and symptom events and returns the
// distinct canonical symptom names found in their titles, descriptions, and
// locations, in first-seen order. Matching is case-insensitive substring
// over a known-symptom table; free text that matches nothing is ignored.
func ExtractSymptoms(events []model.CalendarEvent) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(text string) {
		text = strings.ToLower(text)
		for _, entry := range symptomKeywords {
			if seen[entry.canonical] {
				continue
			}
			if strings.Contains(text, entry.keyword) {
				seen[entry.canonical] = true
				out = append(out, entry.canonical)
			}
		}
	}

	for _, e := range events {
		if e.Type != model.TypePain && e.Type != model.TypeSymptom {
			continue
		}
		add(e.Title)
		add(e.Description)
		add(e.EventData.Location)
		add(e.EventData.Notes)
	}
	return out
}

// symptomKeywords maps free-text fragments to canonical classifier inputs.
// Ordered more-specific first so "chest pain" wins over "pain".
var symptomKeywords = []struct {
	keyword   string
	canonical string
}{
	{"chest pain", "chest pain"},
	{"back pain", "back pain"},
	{"joint pain", "joint pain"},
	{"stomach ache", "abdominal pain"},
	{"stomachache", "abdominal pain"},
	{"abdominal", "abdominal pain"},
	{"migraine", "headache"},
	{"headache", "headache"},
	{"head", "headache"},
	{"nausea", "nausea"},
	{"nauseous", "nausea"},
	{"vomit", "vomiting"},
	{"dizzy", "dizziness"},
	{"dizziness", "dizziness"},
	{"fatigue", "fatigue"},
	{"tired", "fatigue"},
	{"exhausted", "fatigue"},
	{"fever", "fever"},
	{"cough", "cough"},
	{"sore throat", "sore throat"},
	{"throat", "sore throat"},
	{"runny nose", "runny nose"},
	{"congestion", "congestion"},
	{"shortness of breath", "shortness of breath"},
	{"breathless", "shortness of breath"},
	{"rash", "rash"},
	{"itch", "itching"},
	{"swelling", "swelling"},
	{"swollen", "swelling"},
	{"cramp", "cramps"},
	{"diarrhea", "diarrhea"},
	{"constipation", "constipation"},
	{"insomnia", "insomnia"},
	{"can't sleep", "insomnia"},
	{"anxiety", "anxiety"},
	{"anxious", "anxiety"},
	{"depress", "depression"},
	{"mood swing", "mood swings"},
	{"palpitation", "palpitations"},
	{"numbness", "numbness"},
	{"tingling", "tingling"},
	{"blurred vision", "blurred vision"},
	{"chills", "chills"},
	{"sweating", "sweating"},
	{"appetite", "loss of appetite"},
	{"weakness", "weakness"},
	{"chest", "chest pain"},
	{"back", "back pain"},
	{"pain", "pain"},
}
