package notify

import (
	"context"
	"fmt"

	"github.com/tesla-electricidad/intake-engine/internal/leads"
	"github.com/tesla-electricidad/intake-engine/internal/quotes"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// Service alerts the operations team about new leads and sends the
// customer a WhatsApp welcome. Every send is best effort: failures are
// logged and never surface into the chat flow.
type Service struct {
	email         EmailSender
	whatsapp      MessageSender
	operatorEmail string
	logger        *logging.Logger
}

func NewService(email EmailSender, whatsapp MessageSender, operatorEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:         email,
		whatsapp:      whatsapp,
		operatorEmail: operatorEmail,
		logger:        logger,
	}
}

// NotifyNewLead sends the operator summary and the customer welcome.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead, quote *quotes.Quote) {
	if lead == nil {
		return
	}

	if s.email != nil && s.operatorEmail != "" {
		msg := EmailMessage{
			To:      s.operatorEmail,
			ToName:  "Operaciones",
			Subject: fmt.Sprintf("Nuevo lead: %s (%s)", lead.Name, lead.TaxID),
			Body:    operatorSummary(lead, quote),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("operator email failed", "error", err, "lead_id", lead.ID)
		}
	}

	if s.whatsapp != nil && lead.Phone != "" {
		if err := s.whatsapp.SendMessage(ctx, lead.Phone, customerWelcome(lead, quote)); err != nil {
			s.logger.Error("customer whatsapp failed", "error", err, "lead_id", lead.ID)
		}
	}
}

func operatorSummary(lead *leads.Lead, quote *quotes.Quote) string {
	body := fmt.Sprintf(
		"Nuevo lead registrado.\n\nNombre: %s\nRUC: %s\nTeléfono: %s\nServicio: %s\nTipo de negocio: %s\nÁrea: %.0f m2\n",
		lead.Name, lead.TaxID, lead.Phone, lead.ServiceIntent, lead.BusinessType, lead.AreaSqMeters)
	if quote != nil {
		body += fmt.Sprintf("\nCotización: S/ %.2f (válida %d días)\n", quote.TotalAmount, quote.ValidityDays)
	}
	return body
}

func customerWelcome(lead *leads.Lead, quote *quotes.Quote) string {
	msg := fmt.Sprintf(
		"Hola %s, gracias por contactar a Tesla Electricidad. Registramos tu solicitud y un asesor te acompañará en todo el proceso.",
		lead.Name)
	if quote != nil {
		msg += fmt.Sprintf(" Tu cotización es de S/ %.2f y tiene una validez de %d días.",
			quote.TotalAmount, quote.ValidityDays)
	}
	return msg
}
