package constants

// ContextKeyUserID is the key used for the authenticated user ID in both the
// session and the Gin context.
const ContextKeyUserID = "user_id"

// MinPasswordLength is the minimum accepted password length on registration.
const MinPasswordLength = 6

// Nickname length limits for registration.
const (
	MinNicknameLength = 2
	MaxNicknameLength = 20
)

// MaxPlayers is the number of slots on a daily list.
const MaxPlayers = 5

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// HistoryDays is how far back the dashboard looks for sealed lists.
const HistoryDays = 7

// MaxHistoricalLists caps the dashboard history section.
const MaxHistoricalLists = 10
