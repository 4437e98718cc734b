package event

import "time"

// #region domain

// Domain identifies one of the four monitored life areas.
type Domain string

const (
	DomainFinancial   Domain = "financial"
	DomainAcademic    Domain = "academic"
	DomainResidential Domain = "residential"
	DomainLanguage    Domain = "language"
)

// Domains lists all monitored domains in canonical order.
var Domains = []Domain{DomainFinancial, DomainAcademic, DomainResidential, DomainLanguage}

// #endregion domain

// #region event-type

// Type classifies a friction event. Each known type belongs to exactly one domain.
type Type string

const (
	TypeScholarshipDelay   Type = "scholarship_delay"
	TypeFeePayment         Type = "fee_payment"
	TypeFinancialAid       Type = "financial_aid"
	TypeAccountHold        Type = "account_hold"
	TypeAttendanceWarning  Type = "attendance_warning"
	TypeDeadlineConflict   Type = "deadline_conflict"
	TypeAdminWarning       Type = "admin_warning"
	TypeResourceAccess     Type = "resource_access"
	TypeRegistrationBlock  Type = "registration_block"
	TypeHostelAccess       Type = "hostel_access"
	TypeMessCard           Type = "mess_card"
	TypeRoomAssignment     Type = "room_assignment"
	TypeAmenityRestriction Type = "amenity_restriction"
	TypeHousingPayment     Type = "housing_payment"
	TypeLanguageBarrier    Type = "language_barrier"
	TypeFormConfusion      Type = "form_confusion"
	TypeCommunicationIssue Type = "communication_issue"
)

// typeDomains maps each known event type to its owning domain.
var typeDomains = map[Type]Domain{
	TypeScholarshipDelay:   DomainFinancial,
	TypeFeePayment:         DomainFinancial,
	TypeFinancialAid:       DomainFinancial,
	TypeAccountHold:        DomainFinancial,
	TypeAttendanceWarning:  DomainAcademic,
	TypeDeadlineConflict:   DomainAcademic,
	TypeAdminWarning:       DomainAcademic,
	TypeResourceAccess:     DomainAcademic,
	TypeRegistrationBlock:  DomainAcademic,
	TypeHostelAccess:       DomainResidential,
	TypeMessCard:           DomainResidential,
	TypeRoomAssignment:     DomainResidential,
	TypeAmenityRestriction: DomainResidential,
	TypeHousingPayment:     DomainResidential,
	TypeLanguageBarrier:    DomainLanguage,
	TypeFormConfusion:      DomainLanguage,
	TypeCommunicationIssue: DomainLanguage,
}

// #endregion event-type

// #region friction-event

// FrictionEvent is a single recorded bureaucratic obstacle. Immutable once
// recorded; the engine only reads them.
type FrictionEvent struct {
	EventType   Type      `json:"event_type"`
	Domain      Domain    `json:"domain,omitempty"`
	Severity    float64   `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// #endregion friction-event
