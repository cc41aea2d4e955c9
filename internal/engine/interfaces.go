package engine

import (
	"github.com/Veraticus/smsledger/internal/model"
)

// Parser defines the contract for turning one message into a transaction.
type Parser interface {
	Parse(
		msg model.SmsMessage,
		renames map[string]string,
		customRules []model.CustomSmsRule,
		ignoreRules []model.IgnoreRule,
	) *model.PotentialTransaction
}

// ProgressFunc is called after each message with the number processed so far.
type ProgressFunc func(done, total int)
