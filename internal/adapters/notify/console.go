package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/betbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo tablas legibles.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime las recomendaciones del ciclo como tabla.
func (c *Console) Notify(_ context.Context, recs []domain.Recommendation) error {
	now := time.Now().Format("15:04:05")
	if len(recs) == 0 {
		fmt.Fprintf(c.out, "[%s] no recommendations this cycle\n", now)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d recommendation(s)\n", now, len(recs))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Event", "Pick", "Odds", "Conf", "Edge", "Units", "Stake", "Starts")

	for _, rec := range recs {
		table.Append(
			fmt.Sprintf("%d", rec.Rank),
			truncate(rec.EventName, 32),
			rec.Selection,
			fmt.Sprintf("%.2f", rec.RecommendedOdds),
			fmt.Sprintf("%.0f%%", rec.ConfidenceScore),
			fmt.Sprintf("%+.1f%%", rec.ExpectedValue*100),
			fmt.Sprintf("%.1f", rec.Units),
			fmt.Sprintf("$%.2f", rec.Stake),
			rec.StartTime.Local().Format("01-02 15:04"),
		)
	}
	table.Render()

	for _, rec := range recs {
		if len(rec.Rationale.KeyReasons) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "  #%d %s: %s\n",
			rec.Rank, truncate(rec.EventName, 40), strings.Join(rec.Rationale.KeyReasons, "; "))
	}
	fmt.Fprintln(c.out)
	return nil
}

// PrintLedger imprime las entradas del ledger, las más recientes primero.
func (c *Console) PrintLedger(recs []domain.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "\n  Ledger is empty.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Event", "Pick", "Odds", "Stake", "Status", "Return", "P&L")

	for _, rec := range recs {
		pnl := "-"
		if rec.Graded() {
			pnl = fmt.Sprintf("%+.2f", rec.Profit())
		}
		table.Append(
			rec.CreatedAt.Local().Format("01-02 15:04"),
			truncate(rec.EventName, 32),
			rec.Selection,
			fmt.Sprintf("%.2f", rec.RecommendedOdds),
			fmt.Sprintf("$%.2f", rec.Stake),
			string(rec.Status),
			fmt.Sprintf("$%.2f", rec.ActualReturn),
			pnl,
		)
	}
	table.Render()
}

// PrintSummary imprime el resumen de rendimiento del ledger.
func (c *Console) PrintSummary(s domain.LedgerSummary) {
	fmt.Fprintf(c.out, "\n=== LEDGER SUMMARY ===\n")
	fmt.Fprintf(c.out, "  Bets:      %d total — %d won, %d lost, %d pending, %d void\n",
		s.TotalBets, s.Won, s.Lost, s.Pending, s.Void)
	fmt.Fprintf(c.out, "  Win rate:  %.2f%%\n", s.WinRate)
	fmt.Fprintf(c.out, "  Staked:    $%.2f\n", s.TotalStaked)
	fmt.Fprintf(c.out, "  Returned:  $%.2f\n", s.TotalReturned)
	fmt.Fprintf(c.out, "  Net P&L:   $%+.2f\n", s.NetProfit)
	fmt.Fprintf(c.out, "  ROI:       %.2f%%\n", s.ROI)
	if s.Streak.Count > 0 {
		fmt.Fprintf(c.out, "  Streak:    %d %s in a row\n", s.Streak.Count, s.Streak.Type)
	}
	fmt.Fprintln(c.out)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
