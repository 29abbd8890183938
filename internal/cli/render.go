package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/trusty/internal/models"
	"github.com/dmitrijs2005/trusty/internal/ui"
)

const (
	// idWidth is the width of the right-aligned id column. Menu lines are
	// parsed back from the same columns.
	idWidth    = 9
	titleWidth = 45

	timeLayout = "2006-01-02 15:04:05"
)

var (
	listSeparator = strings.Repeat("-", idWidth+1) + "+" + strings.Repeat("-", 21) + "+" + strings.Repeat("-", titleWidth+2)
	rule          = strings.Repeat("=", 80)
)

// Truncate shortens s to at most n characters, marking the cut with "…".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// FormatSummaryLine renders one listing row.
func FormatSummaryLine(s models.NoteSummary) string {
	return fmt.Sprintf("%*d | %s | %s", idWidth, s.ID, s.Updated.Format(timeLayout), Truncate(s.Title, titleWidth))
}

// ParseMenuLine extracts the note id from a listing row produced by
// FormatSummaryLine.
func ParseMenuLine(line string) (int64, error) {
	if strings.TrimSpace(line) == "" {
		return 0, newUsageError(errors.New("menu line is empty, could not look up note"))
	}

	segment := line
	if len(segment) > idWidth {
		segment = segment[:idWidth]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(segment), 10, 64)
	if err != nil || id <= 0 {
		return 0, newUsageError(fmt.Errorf("menu line %q is malformed", strings.TrimSpace(line)))
	}
	return id, nil
}

func renderList(w io.Writer, list []models.NoteSummary) {
	for _, s := range list {
		fmt.Fprintln(w, FormatSummaryLine(s))
		fmt.Fprintln(w, ui.Muted.Sprint(listSeparator))
	}
}

func renderDump(w io.Writer, list []models.Note) {
	for _, n := range list {
		fmt.Fprintf(w, "%*d | %s | %s | %s | %s\n", idWidth, n.ID, n.ContentID,
			n.Created.Format(timeLayout), n.Updated.Format(timeLayout), n.Title)
		for _, line := range strings.Split(n.Body, "\n") {
			fmt.Fprintf(w, "%*d | %s | %s\n", idWidth, n.ID, n.ContentID, line)
		}
	}
}

func renderStats(w io.Writer, st *models.Stats) {
	fmt.Fprintln(w, "tRusty Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Notes: %d :: Trashed Notes: %d :: Encrypted Notes: %d\n", st.Total, st.Trashed, st.Protected)
	fmt.Fprintln(w, rule)

	if st.Largest == nil {
		fmt.Fprintln(w, ui.Muted.Sprint("no notes"))
		return
	}

	fmt.Fprintln(w, "Largest Note:")
	fmt.Fprintf(w, "Note ID: %*d\n", idWidth, st.Largest.ID)
	fmt.Fprintf(w, "Content ID: %s\n", st.Largest.ContentID)
	fmt.Fprintf(w, "Note Size: %d (chars)\n", st.Largest.Size)
	fmt.Fprintf(w, "Title: %s\n", st.Largest.Title)
	fmt.Fprintln(w, rule)

	renderPick(w, "Freshest Note", st.Freshest)
	renderPick(w, "Stalest Note", st.Stalest)
}

func renderPick(w io.Writer, heading string, ns *models.NoteStat) {
	fmt.Fprintln(w, heading)
	fmt.Fprintln(w, "Note ID   | Content ID                           | Updated")
	fmt.Fprintf(w, "%*d | %s | %s\n", idWidth, ns.ID, ns.ContentID, ns.Updated.Format(timeLayout))
	fmt.Fprintf(w, "Title: %s\n", ns.Title)
	fmt.Fprintln(w, rule)
}
