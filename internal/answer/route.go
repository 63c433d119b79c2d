package answer

import (
	"strings"

	"github.com/kailas-cloud/ragchat/internal/bilingual"
)

// Route names the extractor that produced an answer.
type Route string

// Routes.
const (
	RouteFee      Route = "fee"
	RouteDocument Route = "document"
	RouteProcess  Route = "process"
	RouteTime     Route = "time"
	RouteService  Route = "service"
	RouteLocation Route = "location"
	RouteNepal    Route = "nepal"
	RouteGeneral  Route = "general"
	RouteEmpty    Route = "empty"
)

// interrogative is a Nepali question word and the intent it signals.
type interrogative struct {
	word   string
	intent string
}

// nepaliInterrogatives is a priority order: the first word found wins.
var nepaliInterrogatives = []interrogative{
	{"कहाँ", "location"},
	{"कहिले", "time"},
	{"कति", "amount/time"},
	{"कसरी", "process"},
	{"कुन", "which"},
	{"के", "what"},
	{"किन", "why"},
	{"कसले", "who"},
}

type nepaliRule struct {
	intent   string
	keywords []string
	route    Route
}

var nepaliRules = []nepaliRule{
	{"location", []string{"स्थान"}, RouteLocation},
	{"time", []string{"समय", "बेर", "अवधि"}, RouteTime},
	{"amount/time", []string{"शुल्क", "रकम", "मूल्य"}, RouteFee},
	{"process", []string{"प्रक्रिया", "तरिका", "विधि"}, RouteProcess},
	{"", []string{"सेवा", "सुविधा", "सहायता"}, RouteService},
	{"", []string{"कागजात", "कागज", "पत्र"}, RouteDocument},
	{"", []string{"नेपाल", "काठमाण्डौ", "नेपाली"}, RouteNepal},
}

type englishRule struct {
	keywords []string
	route    Route
}

var englishRules = []englishRule{
	{[]string{"fee", "cost", "price", "charge", "शुल्क", "दस्तुर", "रकम", "मूल्य", "कीमत"}, RouteFee},
	{[]string{"document", "paper", "कागजात", "आवश्यक", "कागज", "पत्र", "दस्तावेज"}, RouteDocument},
	{[]string{"process", "step", "procedure", "प्रक्रिया", "काम", "कार्य", "तरिका", "विधि"}, RouteProcess},
	{[]string{"time", "duration", "समय", "कति", "कहिले", "कति बेर", "अवधि"}, RouteTime},
	{[]string{"service", "सेवा", "available", "उपलब्ध", "सुविधा", "सहायता"}, RouteService},
	{[]string{
		"location", "where", "situated", "position", "coordinates", "latitude", "longitude",
		"स्थान", "कहाँ", "अवस्थित",
	}, RouteLocation},
	{[]string{"nepal", "नेपाल", "kathmandu", "काठमाण्डौ", "नेपालको", "नेपालमा", "नेपाली"}, RouteNepal},
}

// Classify picks the extractor for a query. Queries with Devanagari letters
// use the Nepali interrogative table, everything else the English keyword rules.
// The first matching rule wins; no match means RouteGeneral.
func Classify(query string) Route {
	q := strings.ToLower(bilingual.Normalize(query))
	if bilingual.ContainsDevanagari(q) {
		return classifyNepali(q)
	}
	return classifyEnglish(q)
}

func classifyNepali(q string) Route {
	intent := ""
	for _, iw := range nepaliInterrogatives {
		if strings.Contains(q, iw.word) {
			intent = iw.intent
			break
		}
	}
	for _, r := range nepaliRules {
		if (r.intent != "" && r.intent == intent) || containsAny(q, r.keywords) {
			return r.route
		}
	}
	return RouteGeneral
}

func classifyEnglish(q string) Route {
	for _, r := range englishRules {
		if containsAny(q, r.keywords) {
			return r.route
		}
	}
	return RouteGeneral
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
