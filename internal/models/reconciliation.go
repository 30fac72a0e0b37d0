package models

import "time"

// Drift holds pairwise differences between balance views, each as a fixed-precision decimal string.
type Drift struct {
	OnChainVsStored  string `json:"onChainVsStored" yaml:"onChainVsStored"`
	OnChainVsJournal string `json:"onChainVsJournal" yaml:"onChainVsJournal"`
	StoredVsJournal  string `json:"storedVsJournal" yaml:"storedVsJournal"`
}

type ReconciliationReport struct {
	AccountID         string    `json:"accountId" yaml:"accountId"`
	Asset             string    `json:"asset" yaml:"asset"`
	ExternalAddress   string    `json:"externalAddress" yaml:"externalAddress"`
	OnChainBalance    string    `json:"onChainBalance" yaml:"onChainBalance"`
	StoredBalance     string    `json:"storedBalance" yaml:"storedBalance"`
	JournalSumBalance string    `json:"journalSumBalance" yaml:"journalSumBalance"`
	Drift             Drift     `json:"drift" yaml:"drift"`
	HasDrift          bool      `json:"hasDrift" yaml:"hasDrift"`
	CheckedAt         time.Time `json:"checkedAt" yaml:"checkedAt"`
}
