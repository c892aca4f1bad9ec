package router

import (
	"net/http"

	"github.com/Qasim374/freight-system/internal/handlers"
)

func InitRoutes(
	shipmentHandler *handlers.ShipmentHandler,
	bidHandler *handlers.BidHandler,
	blHandler *handlers.BLHandler,
	amendmentHandler *handlers.AmendmentHandler,
	invoiceHandler *handlers.InvoiceHandler,
	trackingHandler *handlers.TrackingHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/quotes", shipmentHandler.CreateQuote)
	mux.HandleFunc("GET /api/quotes/my", shipmentHandler.GetMyQuotes)
	mux.HandleFunc("GET /api/quotes/{quoteId}", shipmentHandler.GetQuote)
	mux.HandleFunc("GET /api/quotes/{quoteId}/result", shipmentHandler.GetQuoteResult)
	mux.HandleFunc("POST /api/quotes/{quoteId}/book", shipmentHandler.BookQuote)
	mux.HandleFunc("POST /api/admin/quotes/{quoteId}/select", shipmentHandler.AdminSelect)

	mux.HandleFunc("POST /api/vendor/quotes/{quoteId}/bid", bidHandler.CreateBid)
	mux.HandleFunc("GET /api/vendor/bids/my", bidHandler.GetMyBids)
	mux.HandleFunc("GET /api/quotes/{quoteId}/bids", bidHandler.GetQuoteBids)

	mux.HandleFunc("POST /api/vendor/upload-bl", blHandler.UploadBL)
	mux.HandleFunc("POST /api/shipments/{shipmentId}/approve-bl", blHandler.ApproveBL)

	mux.HandleFunc("POST /api/amendments", amendmentHandler.CreateAmendment)
	mux.HandleFunc("POST /api/amendments/{amendmentId}/reply", amendmentHandler.VendorReply)
	mux.HandleFunc("PUT /api/admin/amendments", amendmentHandler.AdminAction)
	mux.HandleFunc("POST /api/amendments/{amendmentId}/respond", amendmentHandler.ClientRespond)
	mux.HandleFunc("GET /api/shipments/{shipmentId}/amendments", amendmentHandler.GetShipmentAmendments)

	mux.HandleFunc("POST /api/admin/invoices", invoiceHandler.CreateInvoice)
	mux.HandleFunc("PUT /api/admin/invoices", invoiceHandler.AdminUpdate)
	mux.HandleFunc("POST /api/invoices/{invoiceId}/proof", invoiceHandler.AttachProof)
	mux.HandleFunc("GET /api/shipments/{shipmentId}/invoices", invoiceHandler.GetShipmentInvoices)

	mux.HandleFunc("POST /api/internal/tracking/sweep", trackingHandler.Sweep)
	mux.HandleFunc("POST /api/internal/shipments/{shipmentId}/tracking", trackingHandler.ApplyEvent)

	return mux
}
