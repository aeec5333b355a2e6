package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers and the CLI.
type ServiceContainer struct {
	Chart          ChartSvcFacade
	Ledger         LedgerSvcFacade
	Poster         PosterSvc
	Producer       ProducerSvc
	Outbox         OutboxSvcFacade
	Reconciliation ReconciliationService
}
