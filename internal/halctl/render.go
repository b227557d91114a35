package halctl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"wifihal/pkg/types"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")

	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	labelStyle   = lipgloss.NewStyle().Foreground(dim)
	headingStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
)

func successMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func errorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func boolText(v bool) string {
	if v {
		return successStyle.Render("true")
	}
	return errorStyle.Render("false")
}

type pair struct{ key, value string }

// keyValues renders aligned "key:  value" lines.
func keyValues(pairs ...pair) string {
	width := 0
	for _, p := range pairs {
		if len(p.key) > width {
			width = len(p.key)
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", width+1, p.key+":")) + " " + p.value + "\n")
	}
	return sb.String()
}

func renderTable(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	header := cell.Foreground(purple).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func renderStatus(st types.StatusResponse) string {
	var sb strings.Builder
	sb.WriteString(keyValues(
		pair{"state", st.State},
		pair{"ready", boolText(st.Ready)},
		pair{"service bound", boolText(st.ServiceBound)},
		pair{"generation", strconv.FormatUint(st.Generation, 10)},
	))
	if len(st.Chips) > 0 {
		rows := make([][]string, 0, len(st.Chips))
		for _, c := range st.Chips {
			mode := "-"
			if c.Mode != nil {
				mode = strconv.FormatUint(uint64(*c.Mode), 10)
			}
			modes := make([]string, 0, len(c.Modes))
			for _, m := range c.Modes {
				modes = append(modes, fmt.Sprintf("%d: %s", m.ID, strings.Join(m.Combinations, " | ")))
			}
			rows = append(rows, []string{strconv.FormatUint(uint64(c.ID), 10), mode, strings.Join(modes, "\n")})
		}
		sb.WriteString("\n" + headingStyle.Render("Chips") + "\n")
		sb.WriteString(renderTable([]string{"CHIP", "MODE", "MODES"}, rows) + "\n")
	}
	sb.WriteString("\n" + headingStyle.Render("Interfaces") + "\n")
	sb.WriteString(renderIfaces(st.Ifaces))
	if len(st.PendingAvailable) > 0 {
		keys := make([]string, 0, len(st.PendingAvailable))
		for k := range st.PendingAvailable {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, pair{k, strconv.Itoa(st.PendingAvailable[k])})
		}
		sb.WriteString("\n" + headingStyle.Render("Waiting for availability") + "\n")
		sb.WriteString(keyValues(pairs...))
	}
	return sb.String()
}

func renderIfaces(ifaces []types.IfaceStatus) string {
	if len(ifaces) == 0 {
		return labelStyle.Render("none") + "\n"
	}
	rows := make([][]string, 0, len(ifaces))
	for _, i := range ifaces {
		rows = append(rows, []string{
			i.Name,
			i.Type,
			strconv.FormatUint(uint64(i.Chip), 10),
			strconv.FormatUint(uint64(i.Mode), 10),
			strconv.Itoa(i.Listeners),
		})
	}
	return renderTable([]string{"NAME", "TYPE", "CHIP", "MODE", "LISTENERS"}, rows) + "\n"
}

func renderEvents(events []types.EventRecord) string {
	if len(events) == 0 {
		return labelStyle.Render("no events") + "\n"
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Time.Local().Format(time.TimeOnly),
			e.Name,
			e.Iface,
			strconv.Itoa(e.Chip),
			formatFields(e.Fields),
		})
	}
	return renderTable([]string{"ID", "TIME", "EVENT", "IFACE", "CHIP", "FIELDS"}, rows) + "\n"
}

// formatFields renders fields as sorted key=value pairs.
func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
