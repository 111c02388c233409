package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/ninepay/handler"
)

// Routes registers all API routes
func Routes(r chi.Router, paymentHandler *handler.PaymentHandler, logsHandler *handler.LogsHandler) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", paymentHandler.CreatePaymentLink)
		r.Get("/{requestCode}", paymentHandler.QueryStatus)

		if logsHandler != nil {
			r.Get("/{requestCode}/logs", logsHandler.GetTransactionLogs)
		}
	})
}
