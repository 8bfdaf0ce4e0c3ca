package arbbot

import (
	"log"

	"flasharb/internal/jsonl"
)

type botLogEvent struct {
	TsMs  int64  `json:"ts_ms"`
	Event string `json:"event"`

	Mode string `json:"mode,omitempty"` // dry | live

	LoanSize string `json:"loan_size,omitempty"`
	SwapSize string `json:"swap_size,omitempty"`

	SrcUSD       string `json:"src_usd,omitempty"`
	DestUSD      string `json:"dest_usd,omitempty"`
	ProfitUSD    string `json:"profit_usd,omitempty"`
	ThresholdUSD string `json:"threshold_usd,omitempty"`

	Router string `json:"router,omitempty"`
	MinOut string `json:"min_out,omitempty"`

	TxHash      string `json:"tx_hash,omitempty"`
	Received    string `json:"received,omitempty"`
	LedgerTotal string `json:"ledger_total,omitempty"`

	Cycle uint64 `json:"cycle,omitempty"`
	Err   string `json:"err,omitempty"`

	UptimeMs int64 `json:"uptime_ms,omitempty"`
}

func botMode(enableTrading bool) string {
	if enableTrading {
		return "live"
	}
	return "dry"
}

func logBotEvent(w *jsonl.Writer, ev botLogEvent) {
	if w == nil {
		return
	}
	if err := w.Write(ev); err != nil {
		log.Printf("[warn] attempt log write failed: %v", err)
	}
}
