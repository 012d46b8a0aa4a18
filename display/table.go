package display

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/teranos/qntx-core/errors"
)

// ConfigureColor turns pterm styling off when NO_COLOR is set or disable is true
func ConfigureColor(disable bool) {
	if disable || os.Getenv("NO_COLOR") != "" {
		pterm.DisableStyling()
		return
	}
	pterm.EnableStyling()
}

// Table renders a header row plus rows as a pterm table
func Table(w io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// KeyValues renders label/value pairs as a two-column table without a header
func KeyValues(w io.Writer, pairs [][2]string) error {
	data := make(pterm.TableData, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, []string{pterm.Bold.Sprint(p[0]), p[1]})
	}

	out, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// Success writes a success status line
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Success.Sprintfln(format, args...))
}

// Info writes an informational status line
func Info(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Info.Sprintfln(format, args...))
}

// Warning writes a warning status line
func Warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, pterm.Warning.Sprintfln(format, args...))
}
