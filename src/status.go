package sdr

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// status.go formats the terminal status surface of spec.md §4.6: a
// fixed-width block that repaints itself in place using cursor-up escapes,
// grounded on original_source/src/sdr_rcv.c's print_rcv_stat/print_head/
// print_ch_stat. Data rows are styled blue via lipgloss, matching the
// source's ESC_COL convention.

const statusCols = 122
const statusColsVerbose = statusCols + 14

var statusRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // ANSI blue

// cn0Bar renders the C/N0 bar graph: one '|' per 1.5 dB above 30 dB-Hz, up
// to 13 characters.
func cn0Bar(cn0 float64) string {
	n := int((cn0 - 30.0) / 1.5)
	if n > 13 {
		n = 13
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("|", n)
}

// printStatus overwrites the previous status block (nrow lines) with a
// fresh one and returns the new row count, so the next call knows how many
// cursor-up escapes to emit.
func (r *Receiver) printStatus(nrow int, ix int64, buffFull bool) int {
	w := r.statusW
	for i := 0; i < nrow; i++ {
		fmt.Fprint(w, "\033[A")
	}

	verbose := r.cfg.Verbose
	n := r.printHead(w, ix, buffFull, verbose)

	for _, ch := range r.Channels() {
		if ch.State() != StateLOCK || float64(ch.Lock())*ch.T < MinLock {
			continue
		}
		r.printChannel(w, ch, verbose)
		n++
	}
	cols := statusCols
	if verbose {
		cols = statusColsVerbose
	}
	for ; n < nrow; n++ {
		fmt.Fprintf(w, "%*s\n", cols, "")
	}
	return n
}

func (r *Receiver) printHead(w io.Writer, ix int64, buffFull bool, verbose bool) int {
	nLock := r.lockedCount()
	full := ""
	if buffFull {
		full = "BUFF-FULL"
	}
	nc := statusCols - 77
	if verbose {
		nc += 14
	}
	fmt.Fprintf(w, "\r TIME(s):%10.2f %*s%10s  SRCH:%4d  LOCK:%3d/%3d",
		float64(ix)*TCyc, nc, "", full, int(r.ich.Load())+1, nLock, len(r.workers))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%3s %4s %5s %3s %8s %4s %-12s %11s %7s %11s %4s %5s %4s %4s %3s",
		"CH", "SAT", "SIG", "PRN", "LOCK(s)", "C/N0", "(dB-Hz)", "COFF(ms)",
		"DOP(Hz)", "ADR(cyc)", "SYNC", "#NAV", "#ERR", "#LOL", "NER")
	if verbose {
		fmt.Fprintf(w, " %3s %3s %3s %11s", "ERP", "ERC", "MT", "TOW(s)")
	}
	fmt.Fprintln(w)
	return 2
}

// logStatus is the headless fallback of SPEC_FULL.md §4.6: one diagnostic
// log line per redraw interval instead of a repainted terminal block, for
// deployments with no controlling terminal.
func (r *Receiver) logStatus(ix int64, buffFull bool) {
	r.diag.Info("status", "time_s", float64(ix)*TCyc, "buff_full", buffFull,
		"lock", r.lockedCount(), "channels", len(r.workers))
}

func (r *Receiver) printChannel(w io.Writer, ch *Channel, verbose bool) {
	bar := cn0Bar(ch.Cn0())
	nav0, nav1 := ch.NavCounts()
	row := fmt.Sprintf("%3d %4s %5s %3d %8.2f %4.1f %-13s%11.7f %7.1f %11.1f %s %5d %4d %4d %3d",
		ch.No, ch.Sat(), ch.Sig, ch.PRN, float64(ch.Lock())*ch.T, ch.Cn0(),
		bar, ch.Coff()*1e3, ch.Fd(), ch.Adr(), ch.SyncFlags(), nav0, nav1,
		ch.Lost(), ch.NErr())
	if verbose {
		row += fmt.Sprintf(" %3.0f %3.0f %3d %11.3f",
			ch.ErrPhase()*100.0, ch.ErrCode()*1e8, ch.MsgType(), ch.TOW())
	}
	fmt.Fprintln(w, statusRowStyle.Render(row))
}
