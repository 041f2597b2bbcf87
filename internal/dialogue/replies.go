package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tesla-electricidad/intake-engine/internal/appointments"
	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	"github.com/tesla-electricidad/intake-engine/internal/quotes"
	"github.com/tesla-electricidad/intake-engine/internal/session"
)

const (
	replyGreeting = "¡Hola! Soy el asistente virtual de Tesla Electricidad. " +
		"Atendemos certificados ITSE, pozos a tierra, mantenimiento eléctrico, " +
		"sistemas contra incendios, diseño de tableros y venta de suministros. " +
		"¿En qué puedo ayudarte hoy?"

	replyUnknownIntent = "Disculpa, no logré identificar el servicio que necesitas. " +
		"Puedo ayudarte con: certificado ITSE, pozo a tierra, mantenimiento eléctrico, " +
		"sistema contra incendios, diseño de tableros o suministros eléctricos. " +
		"¿Cuál de estos te interesa?"

	replyAskContact = "Para preparar tu cotización necesito algunos datos: " +
		"tu nombre, tu número de WhatsApp y el RUC de tu empresa (11 dígitos)."

	replyAskSchedule = "¿Qué día y hora te acomoda para la visita técnica? " +
		"Atendemos de lunes a viernes entre 08:00 y 18:00. " +
		"Indícame la fecha (por ejemplo 2026-09-07) y la hora (por ejemplo 10:00)."

	replyScheduleConflict = "Ese horario ya está reservado. " +
		"Por favor elige otra fecha u hora y lo agendamos de inmediato."

	replyScheduleWeekend = "Solo realizamos visitas técnicas de lunes a viernes. " +
		"¿Qué día de semana te acomoda?"

	replyScheduleHours = "Nuestro horario de atención es de 08:00 a 18:00. " +
		"¿Qué hora dentro de ese rango te acomoda?"

	replyScheduleBadSlot = "No pude entender la fecha y hora. " +
		"Indícame la fecha como 2026-09-07 y la hora como 10:00, por favor."

	replyClosed = "Tu visita ya está agendada, ¡gracias por confiar en Tesla Electricidad! " +
		"Si necesitas cotizar otro servicio escribe \"empezar de nuevo\"."

	replyRestarted = "Listo, empecemos de nuevo. " + replyGreeting
)

// renderSpecPrompt asks for the sizing details a quote needs, tailored
// to the identified service.
func renderSpecPrompt(entry catalog.Entry, slots session.Slots) string {
	var missing []string
	if slots.AreaSqMeters <= 0 {
		missing = append(missing, "el área del local en metros cuadrados (por ejemplo: 120 m2)")
	}
	if slots.BusinessType == "" {
		missing = append(missing, "el tipo de negocio (restaurante, oficina, industria, vivienda...)")
	}
	if len(missing) == 0 {
		return replyAskContact
	}
	return fmt.Sprintf("Perfecto, te ayudo con %s (%s, entrega estimada: %s). Para cotizar necesito %s.",
		entry.Name, entry.Description, entry.Turnaround, strings.Join(missing, " y "))
}

// renderContactPrompt re-asks only for the contact fields still missing.
func renderContactPrompt(slots session.Slots) string {
	var missing []string
	if slots.Name == "" {
		missing = append(missing, "tu nombre")
	}
	if slots.Phone == "" {
		missing = append(missing, "tu número de WhatsApp")
	}
	if slots.TaxID == "" {
		missing = append(missing, "el RUC de tu empresa (11 dígitos)")
	}
	if len(missing) == 0 {
		return replyAskContact
	}
	return fmt.Sprintf("Gracias. Todavía me falta %s.", strings.Join(missing, ", "))
}

// RenderQuote formats a computed quote plus the scheduling handoff.
func RenderQuote(q quotes.Quote, entry catalog.Entry) string {
	return fmt.Sprintf(
		"Tu cotización para %s: S/ %.2f (válida por %d días). %s",
		entry.Name, q.TotalAmount, q.ValidityDays, replyAskSchedule)
}

// RenderBooked confirms a scheduled technical visit.
func RenderBooked(appt appointments.Appointment) string {
	return fmt.Sprintf(
		"¡Listo! Tu visita técnica quedó agendada para el %s a las %s. "+
			"Te contactaremos por WhatsApp para confirmar los detalles.",
		appt.Date, appt.Time)
}

// RenderScheduleError maps a scheduling failure to the reply that keeps
// the conversation in the scheduling stage.
func RenderScheduleError(err error) string {
	switch {
	case errors.Is(err, appointments.ErrSlotConflict):
		return replyScheduleConflict
	case errors.Is(err, appointments.ErrWeekendNotAllowed):
		return replyScheduleWeekend
	case errors.Is(err, appointments.ErrOutsideBusinessHours):
		return replyScheduleHours
	default:
		return replyScheduleBadSlot
	}
}
