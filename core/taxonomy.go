package core

// SectionTag is a best-effort classification of the document section a
// chunk was cut from. The set is closed: section detection maps heading
// text onto one of these variants or leaves the chunk unclassified.
type SectionTag int

const (
	SectionUnclassified SectionTag = iota
	SectionProposal
	SectionAssessment
	SectionConclusion
	SectionRecommendation
	SectionConditions
)

var sectionNames = map[SectionTag]string{
	SectionUnclassified:   "unclassified",
	SectionProposal:       "proposal",
	SectionAssessment:     "assessment",
	SectionConclusion:     "conclusion",
	SectionRecommendation: "recommendation",
	SectionConditions:     "conditions",
}

func (s SectionTag) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "unclassified"
}

// Outcome is a planning decision outcome. The zero value means the
// outcome is unknown or unspecified and imposes no filter restriction.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	OutcomeGranted
	OutcomeRefused
	OutcomeWithdrawn
	OutcomePending
	OutcomeAppealAllowed
	OutcomeAppealDismissed
)

var outcomeNames = map[Outcome]string{
	OutcomeGranted:         "Granted",
	OutcomeRefused:         "Refused",
	OutcomeWithdrawn:       "Withdrawn",
	OutcomePending:         "Pending",
	OutcomeAppealAllowed:   "Appeal Allowed",
	OutcomeAppealDismissed: "Appeal Dismissed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return ""
}

// ParseOutcome maps an outcome label to its Outcome value.
// Unknown labels map to OutcomeUnspecified.
func ParseOutcome(label string) Outcome {
	for o, name := range outcomeNames {
		if name == label {
			return o
		}
	}
	return OutcomeUnspecified
}

// DevelopmentType categorizes the kind of development a decision concerns.
// The zero value means unspecified and imposes no filter restriction.
type DevelopmentType int

const (
	DevelopmentUnspecified DevelopmentType = iota
	DevelopmentRearExtension
	DevelopmentSideExtension
	DevelopmentLoftConversion
	DevelopmentDormerWindow
	DevelopmentBasement
	DevelopmentRoofExtension
	DevelopmentChangeOfUse
	DevelopmentNewBuild
	DevelopmentDemolition
	DevelopmentAlterations
	DevelopmentListedBuilding
	DevelopmentTreeWorks
	DevelopmentAdvertisement
	DevelopmentOther
)

var developmentTypeNames = map[DevelopmentType]string{
	DevelopmentRearExtension:  "Rear Extension",
	DevelopmentSideExtension:  "Side Extension",
	DevelopmentLoftConversion: "Loft Conversion",
	DevelopmentDormerWindow:   "Dormer Window",
	DevelopmentBasement:       "Basement/Subterranean",
	DevelopmentRoofExtension:  "Roof Extension",
	DevelopmentChangeOfUse:    "Change of Use",
	DevelopmentNewBuild:       "New Build",
	DevelopmentDemolition:     "Demolition",
	DevelopmentAlterations:    "Alterations",
	DevelopmentListedBuilding: "Listed Building Consent",
	DevelopmentTreeWorks:      "Tree Works",
	DevelopmentAdvertisement:  "Advertisement",
	DevelopmentOther:          "Other",
}

func (d DevelopmentType) String() string {
	if name, ok := developmentTypeNames[d]; ok {
		return name
	}
	return ""
}

// ParseDevelopmentType maps a development type label to its value.
// Unknown labels map to DevelopmentUnspecified.
func ParseDevelopmentType(label string) DevelopmentType {
	for d, name := range developmentTypeNames {
		if name == label {
			return d
		}
	}
	return DevelopmentUnspecified
}
