package service

const (
	MonthsInYear = 12.0
	DaysInYear   = 365.0 // fixed year length used to annualize nightly rates

	// Cache keys are namespaced so a shared redis can hold other data.
	CacheKeyPrefix = "rental:results:"

	DefaultLocale     = "ru"
	DefaultCurrency   = "USD"
	summaryMaxTokens  = 300
	defaultAIModel    = "gpt-4o-mini"
	defaultAIEndpoint = "https://api.openai.com/v1/chat/completions"
)
