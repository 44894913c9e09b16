package http

// User-facing strings. Danish wording is part of the API contract and
// must match byte for byte.
const (
	msgTransactionFieldsRequired = "Brugers-ID, kategori og beløb er påkrævet."
	msgUserIDRequired            = "Brugers-ID er påkrævet."
	msgTransactionNotFound       = "Transaktion ikke fundet eller du har ikke adgang."
	msgBudgetFieldsRequired      = "Brugers-ID, kategori og månedlig grænse er påkrævet."
	msgBudgetExists              = "Du har allerede et budget for denne kategori."
	msgGoalFieldsRequired        = "Brugers-ID, navn og målbeløb er påkrævet."
	msgGoalNotFound              = "Mål ikke fundet eller du har ikke adgang."
	msgContributionRequired      = "Brugers-ID og et positivt bidragsbeløb er påkrævet."
	msgContributionAdded         = "Bidrag tilføjet."
	msgSeeded                    = "Database seedet med testbruger og data."
	msgInvalidBody               = "Ugyldig JSON i forespørgslen."
	msgInvalidDate               = "Ugyldig dato. Brug formatet YYYY-MM-DD."
	msgInternalError             = "Der opstod en intern fejl."
	msgRateLimited               = "For mange forespørgsler. Prøv igen senere."
)
