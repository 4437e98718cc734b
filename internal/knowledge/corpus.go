package knowledge

import "github.com/traceai/engine/internal/event"

// #region corpus

// domainCorpus is the built-in guidance text per domain. Insertion order is
// load-bearing: retrieval ties break toward earlier documents.
var domainCorpus = map[event.Domain][]string{
	event.DomainFinancial: {
		"Scholarship delays can compound into housing and food insecurity issues.",
		"Fee payment processing errors often create cascading administrative holds.",
		"Financial aid verification loops can trap students in bureaucratic cycles.",
		"Students from low-income backgrounds face higher friction from payment delays.",
		"Emergency financial aid typically takes 2-4 weeks to process.",
		"Account holds prevent registration and access to academic resources.",
		"Scholarship disbursement delays average 3-6 weeks in most institutions.",
		"Financial stress correlates strongly with academic performance decline.",
	},
	event.DomainAcademic: {
		"Attendance penalties due to documentation issues are bureaucratic, not educational.",
		"Conflicting deadline requirements indicate systemic process failures.",
		"Administrative warnings often stem from institutional friction, not student failure.",
		"Registration blocks can prevent students from continuing their education.",
		"Course drop deadlines vary across departments, creating confusion.",
		"Academic holds are often administrative rather than performance-based.",
		"Documentation requirements for medical absences vary inconsistently.",
		"Grade posting delays can affect scholarship eligibility determinations.",
	},
	event.DomainResidential: {
		"Hostel access revocation threatens basic housing security.",
		"Mess card suspensions directly impact student nutrition and wellbeing.",
		"Room reassignment delays create housing instability during critical periods.",
		"Amenity restrictions compound stress during academic pressure periods.",
		"Housing allocation errors disproportionately affect first-generation students.",
		"Hostel fee payment issues often stem from scholarship disbursement delays.",
		"Basic needs security (housing, food) is fundamental to academic success.",
		"Residential friction creates compounding stress that affects all life areas.",
	},
	event.DomainLanguage: {
		"Language barriers in administrative processes create systemic exclusion.",
		"Form confusion often indicates institutional language mismatch, not student capability.",
		"Communication issues with administration compound other bureaucratic friction.",
		"Multilingual support reduces dropout rates significantly.",
		"Documentation in non-native languages increases processing errors.",
		"Language barriers cascade into financial and academic friction.",
		"Translation services are often unavailable for critical administrative processes.",
		"First-generation students face higher language-related administrative barriers.",
	},
}

// CorpusTexts returns the built-in guidance passages for a domain.
func CorpusTexts(d event.Domain) []string {
	return domainCorpus[d]
}

// #endregion corpus
