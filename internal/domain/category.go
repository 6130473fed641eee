package domain

// CategoryGroup is a display grouping of category keys.
type CategoryGroup struct {
	Name string
	Keys []string
}

var categoryTexts = map[string]string{
	"away":    "Hey! I'm currently away from my phone. I'll get back to you soon 😊",
	"busy":    "I'm a bit busy right now, but I'll reply as soon as I can 🙏",
	"offline": "I'm offline at the moment. Will catch up with you later!",

	"work":     "I'm working right now. I'll respond once I'm free ⚡",
	"study":    "I'm studying at the moment. Will get back to you later 📚",
	"meetings": "I'm in meetings right now. I'll reply as soon as they're done!",
	"focus":    "I'm in deep focus mode. Will respond when I'm done 🎯",
	"dnd":      "Please don't disturb right now. I'll get back to you soon!",

	"sleep": "I'm sleeping right now. I'll reply when I wake up 😴",
	"lunch": "I'm having lunch. Will get back to you shortly!",
	"gym":   "I'm at the gym right now. Will reply once I'm done 💪",
	"fresh": "I'm freshening up. Will respond in a bit!",

	"driving":  "I'm driving at the moment. I'll text you once I'm parked 🚗",
	"travel":   "I'm traveling right now. Will reply when I can!",
	"family":   "I'm spending time with family. Will catch up with you later 🏡",
	"vacation": "I'm on vacation! I'll reply when I get a chance 🌴",
}

// CategoryGroups lists every category in display order.
var CategoryGroups = []CategoryGroup{
	{Name: "General", Keys: []string{"away", "busy", "offline"}},
	{Name: "Work & Productivity", Keys: []string{"work", "study", "meetings", "focus", "dnd"}},
	{Name: "Personal", Keys: []string{"sleep", "lunch", "gym", "fresh"}},
	{Name: "Travel & Movement", Keys: []string{"driving", "travel", "family", "vacation"}},
}

// IsCategory reports whether key is in the fixed table.
func IsCategory(key string) bool {
	_, ok := categoryTexts[key]
	return ok
}

// CategoryMessage returns the reply text for key.
func CategoryMessage(key string) (string, bool) {
	msg, ok := categoryTexts[key]
	return msg, ok
}

// Categories returns all keys in display order.
func Categories() []string {
	var out []string
	for _, g := range CategoryGroups {
		out = append(out, g.Keys...)
	}
	return out
}
