package service

import (
	"fmt"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/utils"
)

// Keyword groups for informational questions about an area
var (
	transportKeywords = utils.KeywordPattern(
		"transport", "transportation", "transport links", "commute", "commuting",
		"tube lines", "bus routes", "train links", "rail links", "getting around", "get around",
	)
	entertainmentKeywords = utils.KeywordPattern(
		"entertainment", "nightlife", "night life", "bars", "pubs", "clubs",
		"restaurants", "things to do", "going out", "music venues",
	)
	shoppingKeywords = utils.KeywordPattern(
		"shopping", "shops", "markets", "retail",
	)
	generalAreaKeywords = utils.KeywordPattern(
		"tell me about", "what's in", "what is in", "what's it like", "what is it like",
		"information about", "info about", "info on", "more about", "area like",
	)
)

// Intent is the classification of one utterance
type Intent struct {
	Informational bool
	Angle         model.Angle
}

// IntentClassifier separates questions about a place from property searches
// and answers the former from the neighbourhood directory
type IntentClassifier struct {
	areas []model.Area
}

// NewIntentClassifier creates a classifier over the directory
func NewIntentClassifier(areas []model.Area) *IntentClassifier {
	return &IntentClassifier{areas: append([]model.Area(nil), areas...)}
}

// Classify decides whether the utterance is an informational query and,
// if so, which facet was asked about
func (c *IntentClassifier) Classify(utterance string) Intent {
	text := utils.Normalize(utterance)
	switch {
	case transportKeywords.MatchString(text):
		return Intent{Informational: true, Angle: model.AngleTransport}
	case entertainmentKeywords.MatchString(text):
		return Intent{Informational: true, Angle: model.AngleEntertainment}
	case shoppingKeywords.MatchString(text):
		return Intent{Informational: true, Angle: model.AngleShopping}
	case generalAreaKeywords.MatchString(text):
		return Intent{Informational: true, Angle: model.AngleComprehensive}
	default:
		return Intent{}
	}
}

// IsInformational reports whether the utterance asks about a place
func (c *IntentClassifier) IsInformational(utterance string) bool {
	return c.Classify(utterance).Informational
}

// Lookup finds the first area, in directory order, named in the utterance
func (c *IntentClassifier) Lookup(utterance string) (*model.Area, bool) {
	text := utils.Normalize(utterance)
	for i := range c.areas {
		if strings.Contains(text, utils.Normalize(c.areas[i].Name)) {
			area := c.areas[i]
			return &area, true
		}
	}
	return nil, false
}

// Answer builds the reply to an informational utterance
func (c *IntentClassifier) Answer(utterance string, intent Intent) *model.Reply {
	area, ok := c.Lookup(utterance)
	if !ok {
		names := make([]string, len(c.areas))
		for i, a := range c.areas {
			names[i] = a.Name
		}
		return &model.Reply{
			Text: fmt.Sprintf("I can tell you about transport, entertainment and shopping in %s. Which area are you interested in?",
				utils.JoinAnd(names)),
		}
	}
	return &model.Reply{
		Text:  describeArea(area, intent.Angle),
		Area:  area,
		Angle: intent.Angle,
	}
}

func describeArea(a *model.Area, angle model.Angle) string {
	switch angle {
	case model.AngleTransport:
		return fmt.Sprintf("Here's how you get around %s. %s", a.Name, transportSummary(a))
	case model.AngleEntertainment:
		return fmt.Sprintf("Things to do in %s: %s.", a.Name, utils.JoinAnd(a.Entertainment))
	case model.AngleShopping:
		return fmt.Sprintf("Shopping in %s: %s.", a.Name, utils.JoinAnd(a.Shopping))
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%s: %s", a.Name, a.Description)
		if len(a.Highlights) > 0 {
			fmt.Fprintf(&b, " Highlights: %s.", utils.JoinAnd(a.Highlights))
		}
		fmt.Fprintf(&b, " %s", transportSummary(a))
		if len(a.Entertainment) > 0 {
			fmt.Fprintf(&b, " Things to do: %s.", utils.JoinAnd(a.Entertainment))
		}
		if len(a.Shopping) > 0 {
			fmt.Fprintf(&b, " Shopping: %s.", utils.JoinAnd(a.Shopping))
		}
		return b.String()
	}
}

func transportSummary(a *model.Area) string {
	var parts []string
	if len(a.Transport.Tube) > 0 {
		parts = append(parts, "Tube: "+strings.Join(a.Transport.Tube, ", "))
	}
	if len(a.Transport.Overground) > 0 {
		parts = append(parts, "Overground: "+strings.Join(a.Transport.Overground, ", "))
	}
	if len(a.Transport.DLR) > 0 {
		parts = append(parts, "DLR: "+strings.Join(a.Transport.DLR, ", "))
	}
	if len(a.Transport.Bus) > 0 {
		parts = append(parts, "Buses: "+strings.Join(a.Transport.Bus, ", "))
	}
	ct := a.Transport.CommuteTimes
	summary := strings.Join(parts, ". ")
	if summary != "" {
		summary += ". "
	}
	return summary + fmt.Sprintf("Commute times: city centre %s, Canary Wharf %s, Heathrow %s.",
		ct.CityCentre, ct.CanaryWharf, ct.Heathrow)
}
