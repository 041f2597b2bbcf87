package dialogue

import (
	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	"github.com/tesla-electricidad/intake-engine/internal/intent"
	"github.com/tesla-electricidad/intake-engine/internal/session"
)

// VisitRequest is a concrete date/time the visitor asked for while in
// the scheduling stage.
type VisitRequest struct {
	Date string
	Time string
}

// Result is the outcome of a single conversation turn. When LeadReady
// or Visit is set the caller performs the side effect (quote, booking)
// and composes the final response itself.
type Result struct {
	Response  string
	LeadReady bool
	Visit     *VisitRequest
	Restarted bool
}

// Machine advances a conversation through the intake stages. It only
// mutates the session; persistence and side effects belong to the
// caller.
type Machine struct {
	catalog *catalog.Catalog
}

func NewMachine(cat *catalog.Catalog) *Machine {
	if cat == nil {
		panic("dialogue: catalog is required")
	}
	return &Machine{catalog: cat}
}

// Greeting is the opening message for a brand-new conversation.
func (m *Machine) Greeting() string { return replyGreeting }

// Advance processes one visitor message against the session's current
// stage. hint optionally pre-selects the service (e.g. from a landing
// page button) and wins over keyword classification.
func (m *Machine) Advance(sess *session.Session, message string, hint intent.ServiceIntent) Result {
	if isRestart(message) {
		sess.Restart()
		return Result{Response: replyRestarted, Restarted: true}
	}

	switch sess.Stage {
	case session.StageGreeting, session.StageServiceID:
		return m.identifyService(sess, message, hint)
	case session.StageSpecification:
		return m.gatherSpecs(sess, message)
	case session.StageDataCollection:
		return m.collectContact(sess, message)
	case session.StageQuoting:
		// A previous turn completed data collection but the quote was
		// never produced. Retry if the slots are still complete.
		if contactComplete(sess.Slots) {
			return Result{LeadReady: true}
		}
		return m.collectContact(sess, message)
	case session.StageScheduling:
		return m.captureVisit(sess, message)
	case session.StageClosed:
		return Result{Response: replyClosed}
	default:
		sess.Stage = session.StageGreeting
		return Result{Response: replyGreeting}
	}
}

func (m *Machine) identifyService(sess *session.Session, message string, hint intent.ServiceIntent) Result {
	sess.Stage = session.StageServiceID
	got := intent.Classify(message, hint)
	if got == intent.ServiceUnknown {
		return Result{Response: replyUnknownIntent}
	}
	sess.Intent = got
	sess.Stage = session.StageSpecification
	// The opening message often carries sizing details already.
	return m.gatherSpecs(sess, message)
}

func (m *Machine) gatherSpecs(sess *session.Session, message string) Result {
	if area, ok := extractArea(message); ok {
		sess.Slots.AreaSqMeters = area
	}
	if bt, ok := extractBusinessType(message); ok {
		sess.Slots.BusinessType = bt
	}
	if loc, ok := extractLocation(message); ok {
		sess.Slots.Location = loc
	}
	if !specsComplete(sess.Intent, sess.Slots) {
		entry, _ := m.catalog.Lookup(sess.Intent)
		return Result{Response: renderSpecPrompt(entry, sess.Slots)}
	}
	sess.Stage = session.StageDataCollection
	// Same-message contact details count too.
	return m.collectContact(sess, message)
}

func (m *Machine) collectContact(sess *session.Session, message string) Result {
	if name, ok := extractName(message); ok {
		sess.Slots.Name = name
	}
	if phone, ok := extractPhone(message); ok {
		sess.Slots.Phone = phone
	}
	if taxID, ok := extractTaxID(message); ok {
		sess.Slots.TaxID = taxID
	}
	if !contactComplete(sess.Slots) {
		return Result{Response: renderContactPrompt(sess.Slots)}
	}
	sess.Stage = session.StageQuoting
	return Result{LeadReady: true}
}

func (m *Machine) captureVisit(sess *session.Session, message string) Result {
	date, timeOfDay, ok := extractVisit(message)
	if !ok {
		return Result{Response: replyScheduleBadSlot}
	}
	return Result{Visit: &VisitRequest{Date: date, Time: timeOfDay}}
}

// specsComplete reports whether enough sizing detail exists to quote.
// Supplies are quoted flat, so no sizing is needed for them.
func specsComplete(svc intent.ServiceIntent, slots session.Slots) bool {
	if svc == intent.ServiceSupplies {
		return true
	}
	return slots.AreaSqMeters > 0 && slots.BusinessType != ""
}

func contactComplete(slots session.Slots) bool {
	return slots.Name != "" && slots.Phone != "" && slots.TaxID != ""
}
