package extract

// Layout is the upstream text family, decided once per parse
type Layout int

const (
	// LayoutLoose has no section headers; anchors appear inline per field
	LayoutLoose Layout = iota
	// LayoutTemplate carries a reservation-details marker and section titles
	LayoutTemplate
)

func (l Layout) String() string {
	if l == LayoutTemplate {
		return "template"
	}
	return "loose"
}

// Section is the coarse tag the classifier gives each line
type Section int

const (
	SectionNone Section = iota
	SectionHeader
	SectionCustomer
	SectionMenu
	SectionPayment
)

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionCustomer:
		return "customer"
	case SectionMenu:
		return "menu"
	case SectionPayment:
		return "payment"
	}
	return "none"
}

type classifierState int

const (
	stateInit classifierState = iota
	stateHeader
	stateCustomer
	stateMenu
	statePayment
	stateDone
)

// DetectLayout picks the template layout when any line is a marker title
func DetectLayout(lines []RawLine) Layout {
	for _, l := range lines {
		if isMarker(l.Text) {
			return LayoutTemplate
		}
	}
	return LayoutLoose
}

// Classify tags every line with a section and claims the header lines:
// marker, section titles, noise, the footer and everything after it.
// In the template layout, lines before the marker are preamble and are
// claimed too.
func Classify(lines []RawLine, layout Layout, claimed ClaimedSet) ([]Section, ClaimedSet) {
	out := claimed.Clone()
	tags := make([]Section, len(lines))
	state := stateInit

	header := func(i int, rule string) {
		tags[i] = SectionHeader
		out.claim(i, rule)
	}

	for i, l := range lines {
		switch {
		case state == stateDone:
			header(i, ruleFooter)
			continue
		case isFooter(l.Text):
			state = stateDone
			header(i, ruleFooter)
			continue
		case isNoise(l.Text):
			header(i, ruleNoise)
			continue
		case layout == LayoutTemplate && isMarker(l.Text):
			state = stateHeader
			header(i, ruleMarker)
			continue
		}

		if s, ok := sectionTitle(l.Text); ok {
			header(i, ruleSection)
			if layout == LayoutTemplate && state != stateInit {
				state = stateFor(s)
			}
			continue
		}

		switch state {
		case stateInit:
			if layout == LayoutTemplate {
				header(i, rulePreamble)
			}
		case stateHeader:
			// details printed right under the marker belong to the customer
			state = stateCustomer
			tags[i] = SectionCustomer
		default:
			tags[i] = sectionFor(state)
		}
	}
	return tags, out
}

func stateFor(s Section) classifierState {
	switch s {
	case SectionMenu:
		return stateMenu
	case SectionPayment:
		return statePayment
	}
	return stateCustomer
}

func sectionFor(s classifierState) Section {
	switch s {
	case stateMenu:
		return SectionMenu
	case statePayment:
		return SectionPayment
	case stateCustomer:
		return SectionCustomer
	}
	return SectionNone
}
