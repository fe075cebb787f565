package models

// All returns every model in dependency order, for AutoMigrate in tests
// and for the schema check of the migration tool
func All() []any {
	return []any{
		&UserModel{},
		&AreaModel{},
		&WorkerModel{},
		&RateModel{},
		&ViaticRequestModel{},
		&VersionModel{},
		&LineItemModel{},
		&DayConceptModel{},
		&SignatureModel{},
		&TreasuryPaymentModel{},
		&CorrectionRequestModel{},
		&LedgerEntryModel{},
		&AdjustmentBatchModel{},
		&AdjustmentItemModel{},
		&RenditionModel{},
		&RenditionLegModel{},
		&AuditLogModel{},
	}
}
